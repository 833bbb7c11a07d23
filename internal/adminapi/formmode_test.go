package adminapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float64Ptr(v float64) *float64 { return &v }
func int64Ptr(v int64) *int64       { return &v }

func TestFormFieldsSkipsNilPointers(t *testing.T) {
	form := productForm{
		Name:       "Pepperoni",
		CategoryID: int64Ptr(3),
		PriceSmall: float64Ptr(450),
	}

	fields, err := formFields(&form)
	require.NoError(t, err)

	assert.Equal(t, "Pepperoni", fields["name"])
	assert.Equal(t, "3", fields["category_id"])
	assert.Equal(t, "450", fields["price_small"])

	_, hasMedium := fields["price_medium"]
	assert.False(t, hasMedium, "untouched tier must not be sent")
	_, hasBranch := fields["branch_id"]
	assert.False(t, hasBranch)
}

func TestFormFieldsAllTiers(t *testing.T) {
	form := productForm{
		Name:        "Margherita",
		Description: "classic",
		BranchID:    int64Ptr(1),
		CategoryID:  int64Ptr(2),
		PriceSmall:  float64Ptr(390),
		PriceMedium: float64Ptr(490),
		PriceLarge:  float64Ptr(590),
	}

	fields, err := formFields(&form)
	require.NoError(t, err)

	assert.Equal(t, "390", fields["price_small"])
	assert.Equal(t, "490", fields["price_medium"])
	assert.Equal(t, "590", fields["price_large"])
	assert.Equal(t, "classic", fields["description"])
}
