package cartControllers

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/UfereSamuel/hi5ve-marketplace-sub001/models"
)

// Actor identifies whose cart an operation targets: a registered user or an
// anonymous guest session. It is threaded explicitly through every call; the
// cart core never reads request state directly.
type Actor struct {
	ID    string
	Guest bool
}

func UserActor(userID string) Actor   { return Actor{ID: userID} }
func GuestActor(guestID string) Actor { return Actor{ID: guestID, Guest: true} }

func findCart(db *gorm.DB, actor Actor, preloadItems bool) (*models.Cart, error) {
	var cart models.Cart
	q := db.Where("owner_id = ?", actor.ID)
	if preloadItems {
		q = q.Preload("Items")
	}
	if err := q.First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func findOrCreateCart(db *gorm.DB, actor Actor) (*models.Cart, error) {
	cart, err := findCart(db, actor, false)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	created := models.Cart{OwnerID: actor.ID, Guest: actor.Guest}
	if err := db.Create(&created).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

// AddItem merges qty into the actor's line for the product. Stock is checked
// against a live read; the combined quantity may never exceed it.
func AddItem(db *gorm.DB, actor Actor, productID uint, qty int) (*models.CartItem, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}

	var product models.Product
	if err := db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	cart, err := findOrCreateCart(db, actor)
	if err != nil {
		return nil, err
	}

	var item models.CartItem
	err = db.Where("cart_id = ? AND product_id = ?", cart.CartID, productID).First(&item).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if qty > product.Stock {
			return nil, &OutOfStockError{ProductID: productID, Requested: qty, Available: product.Stock}
		}
		item = models.CartItem{
			CartID:    cart.CartID,
			ProductID: productID,
			Quantity:  qty,
			AddedAt:   time.Now(),
		}
		if err := db.Create(&item).Error; err != nil {
			return nil, err
		}
		return &item, nil

	case err != nil:
		return nil, err

	default:
		merged := item.Quantity + qty
		if merged > product.Stock {
			return nil, &OutOfStockError{ProductID: productID, Requested: merged, Available: product.Stock}
		}
		item.Quantity = merged
		item.AddedAt = time.Now()
		if err := db.Save(&item).Error; err != nil {
			return nil, err
		}
		return &item, nil
	}
}

// SetQuantity replaces the line quantity. Zero removes the line; a quantity
// above stock fails with the clamped maximum in the error payload.
func SetQuantity(db *gorm.DB, actor Actor, productID uint, qty int) (*models.CartItem, error) {
	if qty < 0 {
		return nil, ErrInvalidQuantity
	}
	if qty == 0 {
		return nil, RemoveItem(db, actor, productID)
	}

	var product models.Product
	if err := db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if qty > product.Stock {
		return nil, &InsufficientStockError{ProductID: productID, Requested: qty, Available: product.Stock}
	}

	cart, err := findOrCreateCart(db, actor)
	if err != nil {
		return nil, err
	}

	var item models.CartItem
	err = db.Where("cart_id = ? AND product_id = ?", cart.CartID, productID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		item = models.CartItem{CartID: cart.CartID, ProductID: productID, Quantity: qty, AddedAt: time.Now()}
		if err := db.Create(&item).Error; err != nil {
			return nil, err
		}
		return &item, nil
	}
	if err != nil {
		return nil, err
	}

	item.Quantity = qty
	item.AddedAt = time.Now()
	if err := db.Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveItem deletes the line if present. Removing an absent item succeeds
// silently.
func RemoveItem(db *gorm.DB, actor Actor, productID uint) error {
	cart, err := findCart(db, actor, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return db.Where("cart_id = ? AND product_id = ?", cart.CartID, productID).
		Delete(&models.CartItem{}).Error
}

// Clear empties the cart. Clearing an empty or missing cart succeeds silently.
func Clear(db *gorm.DB, actor Actor) error {
	cart, err := findCart(db, actor, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return db.Where("cart_id = ?", cart.CartID).Delete(&models.CartItem{}).Error
}

// TransferGuestCart union-merges the guest's lines into the user's cart,
// summing quantities per product and re-clamping each merged line to live
// stock, then deletes the guest cart inside the same transaction. Because
// the guest cart is gone afterwards, re-invoking with the same guest token
// is a natural no-op and can never double quantities.
func TransferGuestCart(db *gorm.DB, guestID, userID string) (bool, error) {
	merged := false
	err := db.Transaction(func(tx *gorm.DB) error {
		var guestCart models.Cart
		err := tx.Preload("Items").Where("owner_id = ?", guestID).First(&guestCart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // nothing to merge
		}
		if err != nil {
			return err
		}

		userCart, err := findOrCreateCart(tx, UserActor(userID))
		if err != nil {
			return err
		}

		for _, guestItem := range guestCart.Items {
			var product models.Product
			err := tx.First(&product, "id = ?", guestItem.ProductID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue // product gone, drop the line
			}
			if err != nil {
				return err
			}

			var userItem models.CartItem
			lookupErr := tx.Where("cart_id = ? AND product_id = ?", userCart.CartID, guestItem.ProductID).
				First(&userItem).Error

			switch {
			case lookupErr == nil:
				qty := userItem.Quantity + guestItem.Quantity
				if qty > product.Stock {
					qty = product.Stock
				}
				if qty <= 0 {
					if err := tx.Delete(&userItem).Error; err != nil {
						return err
					}
					continue
				}
				userItem.Quantity = qty
				userItem.AddedAt = time.Now()
				if err := tx.Save(&userItem).Error; err != nil {
					return err
				}
			case errors.Is(lookupErr, gorm.ErrRecordNotFound):
				qty := guestItem.Quantity
				if qty > product.Stock {
					qty = product.Stock
				}
				if qty <= 0 {
					continue
				}
				newItem := models.CartItem{
					CartID:    userCart.CartID,
					ProductID: guestItem.ProductID,
					Quantity:  qty,
					AddedAt:   time.Now(),
				}
				if err := tx.Create(&newItem).Error; err != nil {
					return err
				}
			default:
				return lookupErr
			}
		}

		if err := tx.Where("cart_id = ?", guestCart.CartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&guestCart).Error; err != nil {
			return err
		}
		merged = len(guestCart.Items) > 0
		return nil
	})
	return merged, err
}
