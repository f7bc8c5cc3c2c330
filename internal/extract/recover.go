package extract

import (
	"fmt"

	"github.com/mvp-joe/project-cortex/internal/indexerr"
	"github.com/mvp-joe/project-cortex/internal/model"
	"github.com/mvp-joe/project-cortex/internal/synparse"
)

// safeExtractSymbols recovers from a panicking extractor so the remaining
// phases (imports, calls, comments) still run — per spec §7, an
// ExtractionError is logged and extraction continues.
func safeExtractSymbols(ext Extractor, tree *synparse.Tree, filePath string) (symbols []model.Symbol, errs []error) {
	defer func() {
		if r := recover(); r != nil {
			errs = append(errs, indexerr.Wrap(indexerr.ExtractionError, "symbol extraction panicked", fmt.Errorf("%v", r)))
		}
	}()
	return ext.ExtractSymbols(tree, filePath)
}

func safeExtractImportsExports(ext Extractor, tree *synparse.Tree, filePath string) (imports []model.Import, exports []model.Export, errs []error) {
	defer func() {
		if r := recover(); r != nil {
			errs = append(errs, indexerr.Wrap(indexerr.ExtractionError, "import/export extraction panicked", fmt.Errorf("%v", r)))
		}
	}()
	return ext.ExtractImportsExports(tree, filePath)
}

func safeExtractCalls(ext Extractor, tree *synparse.Tree, filePath string) (calls []model.CallSite, errs []error) {
	defer func() {
		if r := recover(); r != nil {
			errs = append(errs, indexerr.Wrap(indexerr.ExtractionError, "call extraction panicked", fmt.Errorf("%v", r)))
		}
	}()
	return ext.ExtractCalls(tree, filePath)
}

func safeExtractComments(ext Extractor, tree *synparse.Tree, filePath string) (comments []model.Comment, errs []error) {
	defer func() {
		if r := recover(); r != nil {
			errs = append(errs, indexerr.Wrap(indexerr.ExtractionError, "comment extraction panicked", fmt.Errorf("%v", r)))
		}
	}()
	return ext.ExtractComments(tree, filePath)
}
