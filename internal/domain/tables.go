package domain

var Tables = []interface{}{
	// Cart
	&CartItem{},
	// Checkout
	&Order{},
	&OrderItem{},
}
