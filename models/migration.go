package models

import (
	"log"

	"bitbucket.org/mmdatafocus/hq_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Store{}, &User{},
		&DailyStoreSales{}, &DailySalesmanSales{}, &DailySalesMeta{},
		&DailyStoreTarget{}, &DailySalesmanTarget{}, &SpecialTarget{},
		&SalesSyncRun{}, &SalesSyncError{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
