package presence

type Role string

const (
	RoleCustomer Role = "customer"
	RoleMerchant Role = "merchant"
	RoleDelivery Role = "delivery"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleMerchant, RoleDelivery:
		return true
	default:
		return false
	}
}

func (r Role) IsCourier() bool {
	return r == RoleDelivery
}
