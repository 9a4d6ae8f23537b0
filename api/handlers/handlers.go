package handlers

import (
	"github.com/feichai0017/docprep/internal/service/casepkg"
	"github.com/feichai0017/docprep/internal/settings"
	"github.com/feichai0017/docprep/pkg/logger"
)

type Handlers struct {
	Package *PackageHandler
}

func NewHandlers(
	packageService casepkg.PackageService,
	store *settings.Store,
	logger logger.Logger,
) *Handlers {
	return &Handlers{
		Package: NewPackageHandler(packageService, store, logger),
	}
}
