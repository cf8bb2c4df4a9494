package domain

// Label is a provider-owned named tag. The ID is the provider's opaque
// handle; Name is the exact user-visible name the label was resolved by.
type Label struct {
	ID   string
	Name string
}
