// Package xfa locates and decodes the XFA datasets packet that fillable
// DD2977 forms carry next to their visual layout.
package xfa

import (
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/rs/zerolog/log"

	pdferrors "github.com/a3tai/draw-parser/internal/pdf/errors"
)

// datasetsPacket is the XFA array key naming the data packet
const datasetsPacket = "datasets"

// Extractor reads the embedded dataset of a PDF using pdfcpu
type Extractor struct{}

// NewExtractor creates a new dataset extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractFile returns the decoded xfa:data tree of the PDF at filePath.
// Any failure is reported as a NoDataset or MalformedDataset error; callers
// treat both as "absent".
func (x *Extractor) ExtractFile(filePath string) (*Element, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeNoDataset, "failed to open PDF file", err)
	}
	defer file.Close()

	return x.ExtractReader(file)
}

// ExtractReader returns the decoded xfa:data tree from a PDF stream
func (x *Extractor) ExtractReader(reader io.ReadSeeker) (tree *Element, err error) {
	// pdfcpu panics on some damaged cross reference tables
	defer func() {
		if r := recover(); r != nil {
			tree = nil
			err = pdferrors.NewPDFError(pdferrors.ErrorTypeMalformedDataset, fmt.Sprintf("pdf parser panic: %v", r))
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(reader, conf)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeMalformedDataset, "failed to read PDF context", err)
	}

	packet, err := DatasetsPacket(ctx)
	if err != nil {
		return nil, err
	}

	log.Debug().Int("bytes", len(packet)).Msg("found XFA datasets packet")
	return ParseDatasets(packet)
}

// DatasetsPacket returns the raw datasets XML referenced by the AcroForm
// dictionary. The XFA entry is either one stream holding the whole XDP
// document, or an array alternating packet names and streams.
func DatasetsPacket(ctx *model.Context) ([]byte, error) {
	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeMalformedDataset, "failed to get catalog", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeNoDataset, "no AcroForm dictionary")
	}

	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil || acroFormDict == nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeMalformedDataset, "failed to dereference AcroForm", err)
	}

	xfaObj, found := acroFormDict.Find("XFA")
	if !found {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeNoDataset, "AcroForm has no XFA entry")
	}

	xfaValue, err := ctx.Dereference(xfaObj)
	if err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeMalformedDataset, "failed to dereference XFA entry", err)
	}

	switch v := xfaValue.(type) {
	case types.StreamDict:
		return streamContent(ctx, xfaObj)
	case types.Array:
		return datasetsFromArray(ctx, v)
	default:
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeMalformedDataset,
			fmt.Sprintf("unexpected XFA entry type %T", xfaValue))
	}
}

func datasetsFromArray(ctx *model.Context, arr types.Array) ([]byte, error) {
	for i := 0; i+1 < len(arr); i += 2 {
		name, err := ctx.DereferenceStringOrHexLiteral(arr[i], model.V10, nil)
		if err != nil || name != datasetsPacket {
			continue
		}

		return streamContent(ctx, arr[i+1])
	}

	return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeNoDataset, "XFA array has no datasets packet")
}

func streamContent(ctx *model.Context, obj types.Object) ([]byte, error) {
	sd, _, err := ctx.DereferenceStreamDict(obj)
	if err != nil || sd == nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeMalformedDataset, "datasets entry is not a stream", err)
	}
	if err := sd.Decode(); err != nil {
		return nil, pdferrors.WrapError(pdferrors.ErrorTypeMalformedDataset, "failed to decode XFA stream", err)
	}
	if len(sd.Content) == 0 {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeNoDataset, "XFA stream is empty")
	}
	return sd.Content, nil
}
