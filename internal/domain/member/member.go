package member

import "strings"

// Member is a storefront customer who has been assigned a member code.
// ID is the numeric customer ID; GID is the full storefront global ID
// (gid://shopify/Customer/12345) used by metafield mutations.
type Member struct {
	ID           string `json:"customer_id"`
	GID          string `json:"gid"`
	Code         Code   `json:"g_code"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	ShippingRate string `json:"shipping_rate"`
	CreatedAt    string `json:"created_at"`
}

// DisplayName builds the customer-facing name the way the storefront
// shows Japanese names: family name directly followed by given name.
// Falls back to the email address when both parts are empty.
func DisplayName(lastName, firstName, email string) string {
	name := strings.TrimSpace(lastName + firstName)
	if name == "" {
		return email
	}
	return name
}

// NumericID extracts the trailing numeric ID from a storefront global ID.
// Inputs that are already plain IDs pass through unchanged.
func NumericID(gid string) string {
	if i := strings.LastIndex(gid, "/"); i >= 0 {
		return gid[i+1:]
	}
	return gid
}
