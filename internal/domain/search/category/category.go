package category

// Category is one of the fixed result domains a travel query is split into.
type Category string

// Category constants.
const (
	// Lodging covers hotels, guesthouses and other stays.
	Lodging Category = "lodging"
	// Attraction covers tourist spots and sights.
	Attraction Category = "attraction"
	Food       Category = "food"
	// Event covers festivals and local happenings.
	Event Category = "event"
)

// All returns the four categories in canonical dispatch order.
func All() []Category {
	return []Category{Lodging, Attraction, Food, Event}
}

// IsValid checks if the category is one of the supported values.
func (c Category) IsValid() bool {
	return c == Lodging || c == Attraction || c == Food || c == Event
}

func (c Category) String() string { return string(c) }
