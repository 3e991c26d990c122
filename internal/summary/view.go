package summary

import (
	"github.com/epeers/portools/internal/models"
)

// View is one derived view maintained by the pipeline
type View interface {
	Kind() models.ViewKind
	Compute(p *models.Portfolio) (*models.SummaryDocument, error)
}

type classifierView[K ~string] struct {
	kind     models.ViewKind
	classify Classifier[K]
}

// NewView binds a classifier to the view kind it is persisted under
func NewView[K ~string](kind models.ViewKind, classify Classifier[K]) View {
	return classifierView[K]{kind: kind, classify: classify}
}

func (v classifierView[K]) Kind() models.ViewKind {
	return v.kind
}

func (v classifierView[K]) Compute(p *models.Portfolio) (*models.SummaryDocument, error) {
	s, err := Summarize[K](p, v.classify)
	if err != nil {
		return nil, err
	}
	return s.Document(v.kind), nil
}

// DefaultViews returns the asset class and symbol views
func DefaultViews(table AssetClassTable) []View {
	return []View{
		NewView[models.AssetClass](models.ViewAssetClass, table.ByAssetClass),
		NewView[string](models.ViewSymbol, BySymbol),
	}
}
