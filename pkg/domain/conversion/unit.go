package conversion

import (
	"github.com/felixgeelhaar/porter/pkg/domain/checklist"
)

// Unit is one resolved conversion input handed to a generator: the checklist
// identity plus the loaded source content. Content is empty for units with
// no source analogue.
type Unit struct {
	SourcePath string
	TargetPath string
	Category   checklist.Category
	Technology Technology
	Content    string
}

// UnitFromItem builds a unit from a checklist item. Source content is
// attached separately by the caller, which owns the I/O.
func UnitFromItem(item checklist.Item, tech Technology) Unit {
	return Unit{
		SourcePath: item.SourcePath,
		TargetPath: item.TargetPath,
		Category:   item.Category,
		Technology: tech,
	}
}
