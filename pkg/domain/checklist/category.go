package checklist

import "fmt"

// Category is the semantic grouping of a conversion unit. It drives
// conversion ordering and reporting, nothing else.
type Category string

const (
	CategoryStructure  Category = "structure"
	CategoryAttributes Category = "attributes"
	CategoryStaticFile Category = "static-file"
	CategoryTemplate   Category = "template"
	CategoryRecipeTask Category = "recipe-task"
)

// CategoryOrder returns categories in conversion order. Dependency-free
// categories come first; later categories' generation context may reference
// earlier outputs.
func CategoryOrder() []Category {
	return []Category{
		CategoryStructure,
		CategoryAttributes,
		CategoryStaticFile,
		CategoryTemplate,
		CategoryRecipeTask,
	}
}

// OrderIndex returns the category's position in conversion order.
func (c Category) OrderIndex() int {
	for i, cat := range CategoryOrder() {
		if cat == c {
			return i
		}
	}
	return len(CategoryOrder())
}

// IsValid returns true if the category is one of the defined values.
func (c Category) IsValid() bool {
	return c.OrderIndex() < len(CategoryOrder())
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory parses a string into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid category: %s", s)
	}
	return c, nil
}
