package casepkg

import (
	"context"

	"github.com/feichai0017/docprep/internal/models"
	"github.com/feichai0017/docprep/internal/pdfmatch"
)

// PackageService is the workflow surface consumed by the HTTP handlers and
// the CLI. All operations are synchronous and run to completion on the
// calling goroutine; the working folder is assumed to be accessed by one
// invocation at a time.
type PackageService interface {
	// FormPackage runs the full chain on a working folder holding both the
	// claim document and the dossier archive: extract facts, unpack the
	// dossier, consolidate obligation folders and apply the statement
	// pipeline. Reorganization failures abort and surface as the error;
	// statement-pipeline failures are reported per step in the result.
	FormPackage(ctx context.Context, folder string, cfg models.PipelineConfig) (*models.PackageResult, error)

	// InsertStatement places a late-arriving claim document into a dossier
	// that was unpacked earlier without one, then proceeds like FormPackage.
	InsertStatement(ctx context.Context, folder string, cfg models.PipelineConfig) (*models.PackageResult, error)

	// UnpackNoStatement extracts the dossier archive into a folder named
	// "<case number> без заявления". No document phase runs.
	UnpackNoStatement(ctx context.Context, folder string) (*models.PackageResult, error)

	// CheckPublication cross-checks the claim document facts against the
	// official publication PDF. The results are advisory; they never alter
	// the extracted facts.
	CheckPublication(ctx context.Context, folder, pdfPath string) (map[string]pdfmatch.Result, error)

	// Banks lists the bank names available in the requisites document.
	Banks() ([]string, error)
}
