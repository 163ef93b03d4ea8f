package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/hq_backend/config"
)

type Store struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Code      string    `gorm:"size:50;not null;unique" json:"code" binding:"required"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Region    string    `gorm:"size:100" json:"region"`
	IsActive  *bool     `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewStore struct {
	Code     string `json:"code" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Region   string `json:"region"`
	IsActive *bool  `json:"is_active" binding:"required"`
}

/*
caches:
	StoreList
*/

func (store Store) RemoveAllRedis() error {
	if err := config.RemoveRedisKey("StoreList"); err != nil {
		return err
	}
	return nil
}

func GetStores(ctx context.Context) ([]Store, error) {
	db := config.GetDB()

	var results []Store
	exists, err := config.GetRedisObject("StoreList", &results)
	if err != nil {
		return nil, err
	}
	if exists {
		return results, nil
	}

	if err := db.WithContext(ctx).Model(&Store{}).Order("code asc").Find(&results).Error; err != nil {
		return nil, err
	}

	if err := config.SetRedisObject("StoreList", &results, 6*time.Hour); err != nil {
		return nil, err
	}
	return results, nil
}

func GetStoreByCode(ctx context.Context, code string) (*Store, error) {
	db := config.GetDB()

	var result Store
	if err := db.WithContext(ctx).Model(&Store{}).Where("code = ?", code).Take(&result).Error; err != nil {
		return nil, errors.New("store not found")
	}
	return &result, nil
}

func CreateStore(ctx context.Context, input NewStore) (*Store, error) {
	db := config.GetDB()

	store := Store{
		Code:     input.Code,
		Name:     input.Name,
		Region:   input.Region,
		IsActive: input.IsActive,
	}
	if err := db.WithContext(ctx).Create(&store).Error; err != nil {
		return nil, err
	}
	if err := store.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return &store, nil
}

func UpdateStore(ctx context.Context, id int, input NewStore) (*Store, error) {
	db := config.GetDB()

	var store Store
	if err := db.WithContext(ctx).Model(&Store{}).Where("id = ?", id).Take(&store).Error; err != nil {
		return nil, errors.New("store not found")
	}

	store.Code = input.Code
	store.Name = input.Name
	store.Region = input.Region
	store.IsActive = input.IsActive

	if err := db.WithContext(ctx).Save(&store).Error; err != nil {
		return nil, err
	}
	if err := store.RemoveAllRedis(); err != nil {
		return nil, err
	}
	return &store, nil
}

// ActiveStoreCodes returns the codes of every active store, used when a
// target request addresses "ALL" stores.
func ActiveStoreCodes(ctx context.Context) ([]string, error) {
	db := config.GetDB()

	var codes []string
	if err := db.WithContext(ctx).Model(&Store{}).
		Where("is_active = ?", true).
		Order("code asc").
		Pluck("code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}
