package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	cartControllers "github.com/UfereSamuel/hi5ve-marketplace-sub001/controllers/cart"
)

type MergeCartRequest struct {
	GuestID string `json:"guest_id" binding:"required"`
}

// POST /auth/merge-cart
//
// Called once right after login: folds the guest's cart into the now
// authenticated user's cart. A repeated call with the same guest token finds
// no guest cart left and merges nothing.
func MergeGuestCart(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID, _ := userIDVal.(string)

		var req MergeCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		merged, err := cartControllers.TransferGuestCart(db, req.GuestID, userID)
		if err != nil {
			log.Error("guest cart merge failed",
				zap.String("guest_id", req.GuestID),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "merge failed"})
			return
		}

		status := "guest-cart-empty"
		if merged {
			status = "merged-success"
		}
		c.JSON(http.StatusOK, gin.H{"merge_status": status})
	}
}
