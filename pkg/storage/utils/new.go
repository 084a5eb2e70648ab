// Package storageutils is the storage utility package
package storageutils

import (
	"fmt"

	"github.com/foliolabs/folio/pkg/storage"
	"github.com/foliolabs/folio/pkg/storage/inmemory"
	"github.com/foliolabs/folio/pkg/storage/sqlite"
)

type NewDriverOpts struct {
	ProviderType string
	SQLitePath   string
}

func NewDriver(o *NewDriverOpts) (storage.Driver, error) {
	switch o.ProviderType {
	case "", "sqlite":
		return sqlite.NewSQLiteDriver(o.SQLitePath)
	case "inmemory":
		return inmemory.NewDriver(), nil
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", o.ProviderType)
	}
}
