package vectorutils

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/foliolabs/folio/pkg/vector"
	"github.com/foliolabs/folio/pkg/vector/memory"
	"github.com/foliolabs/folio/pkg/vector/qdrant"
	"github.com/foliolabs/folio/pkg/vector/sqlitevec"
)

type NewVectorStoreOpts struct {
	ProviderType string
	Target       string
	Dimensions   uint
	Logger       *zap.Logger
}

func NewVectorStore(o *NewVectorStoreOpts) (vector.Store, error) {
	switch o.ProviderType {
	case "sqlite-vec":
		return sqlitevec.NewStore(sqlitevec.Config{
			Dir:        o.Target,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "qdrant":
		return qdrant.NewStore(qdrant.Config{
			URL:        o.Target,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "memory":
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
