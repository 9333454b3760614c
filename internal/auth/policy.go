package auth

import "catalog/internal/model"

// CanModify reports whether actor may update or delete product:
// admins may modify anything, everyone else only what they own.
func CanModify(actor *model.User, product *model.Product) bool {
	if actor == nil || product == nil {
		return false
	}
	return actor.IsAdmin() || actor.ID == product.CreatedBy
}
