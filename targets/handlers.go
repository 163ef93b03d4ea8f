package targets

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/hq_backend/config"
	"bitbucket.org/mmdatafocus/hq_backend/models"
)

func UpsertStoreTargetsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var inputs []StoreTargetInput
		if err := c.ShouldBindJSON(&inputs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		written, err := UpsertStoreTargets(c.Request.Context(), inputs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"rows": written})
	}
}

func UpsertSalesmanTargetsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var inputs []SalesmanTargetInput
		if err := c.ShouldBindJSON(&inputs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		written, err := UpsertSalesmanTargets(c.Request.Context(), inputs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"rows": written})
	}
}

func CreatePeriodTargetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input PeriodTargetInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		written, err := CreatePeriodTarget(c.Request.Context(), input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"rows": written})
	}
}

func CreateSpecialTargetHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input SpecialTargetInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		row, err := CreateSpecialTarget(c.Request.Context(), input)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, row)
	}
}

func ListSpecialTargetsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := ListSpecialTargets(c.Request.Context(), c.Query("store"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

// ListStoreTargetsHandler returns the daily store target rows in a date range.
func ListStoreTargetsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		from, err := parseDate(c.Query("from"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from date must be YYYY-MM-DD"})
			return
		}
		to, err := parseDate(c.Query("to"))
		if err != nil {
			to = from.AddDate(0, 0, 30)
		}

		db := config.GetDB().WithContext(c.Request.Context())
		query := db.Model(&models.DailyStoreTarget{}).
			Where("target_date BETWEEN ? AND ?", from.Format("2006-01-02"), to.Format("2006-01-02"))
		if store := c.Query("store"); store != "" {
			query = query.Where("store_code = ?", store)
		}

		var rows []models.DailyStoreTarget
		if err := query.Order("target_date asc, store_code asc").Find(&rows).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}
