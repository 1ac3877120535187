// Package pdftest builds small PDF documents for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

// Builder assembles an uncompressed PDF with accurate xref offsets
type Builder struct {
	objects []string
}

// Add appends an object body and returns its object number
func (b *Builder) Add(body string) int {
	b.objects = append(b.objects, body)
	return len(b.objects)
}

// AddStream appends a stream object with the given extra dictionary entries
func (b *Builder) AddStream(dict string, data []byte) int {
	body := fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(data), data)
	return b.Add(body)
}

// Reserve allocates an object number whose body is set later with Set
func (b *Builder) Reserve() int {
	return b.Add("null")
}

// Set replaces the body of a reserved object
func (b *Builder) Set(num int, body string) {
	b.objects[num-1] = body
}

// Bytes serializes the document with root as the catalog object
func (b *Builder) Bytes(root int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")

	offsets := make([]int, len(b.objects))
	for i, body := range b.objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(b.objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(b.objects)+1, root, xrefStart)

	return buf.Bytes()
}

// Options controls the shape of a generated form document
type Options struct {
	// PageText lines are drawn on the single page with Helvetica
	PageText []string
	// Datasets is the XFA datasets packet; nil omits the AcroForm entirely
	Datasets []byte
	// ArrayForm stores XFA as a name/stream array instead of a single stream
	ArrayForm bool
}

// FormPDF builds a one page document, optionally carrying an XFA dataset
func FormPDF(opts Options) []byte {
	b := &Builder{}

	catalog := b.Reserve()
	pages := b.Reserve()
	font := b.Add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	contents := b.AddStream("", pageContent(opts.PageText))
	page := b.Add(fmt.Sprintf(
		"<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] /Contents %d 0 R /Resources << /Font << /F1 %d 0 R >> >> >>",
		pages, contents, font))
	b.Set(pages, fmt.Sprintf("<< /Type /Pages /Kids [%d 0 R] /Count 1 >>", page))

	if opts.Datasets == nil {
		b.Set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pages))
		return b.Bytes(catalog)
	}

	datasets := b.AddStream("", opts.Datasets)
	var xfaEntry string
	if opts.ArrayForm {
		template := b.AddStream("", []byte(`<template xmlns="http://www.xfa.org/schema/xfa-template/3.3/"/>`))
		xfaEntry = fmt.Sprintf("[(template) %d 0 R (datasets) %d 0 R]", template, datasets)
	} else {
		xfaEntry = fmt.Sprintf("%d 0 R", datasets)
	}
	acroForm := b.Add(fmt.Sprintf("<< /Fields [] /XFA %s >>", xfaEntry))
	b.Set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R /AcroForm %d 0 R >>", pages, acroForm))

	return b.Bytes(catalog)
}

func pageContent(lines []string) []byte {
	var buf bytes.Buffer
	buf.WriteString("BT /F1 11 Tf 14 TL 72 740 Td\n")
	for _, line := range lines {
		fmt.Fprintf(&buf, "(%s) Tj T*\n", escape(line))
	}
	buf.WriteString("ET")
	return buf.Bytes()
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

// TextPDF renders lines into a compressed text-layer PDF with gofpdf
func TextPDF(t *testing.T, lines []string) []byte {
	t.Helper()

	doc := gofpdf.New("P", "mm", "Letter", "")
	doc.AddPage()
	doc.SetFont("Helvetica", "", 11)
	for _, line := range lines {
		doc.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("Failed to render PDF: %v", err)
	}
	return buf.Bytes()
}

// WriteFile writes data into a temp directory owned by t and returns its path
func WriteFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}

// Datasets wraps a form1 payload in an XDP datasets packet
func Datasets(form1 string) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<xfa:datasets xmlns:xfa="http://www.xfa.org/schema/xfa-data/1.0/">
<xfa:data>
<form1>` + form1 + `</form1>
</xfa:data>
<dd:dataDescription xmlns:dd="http://ns.adobe.com/data-description/"/>
</xfa:datasets>`)
}

// XDP wraps the Datasets packet for form1 in a whole xdp:xdp document, the
// shape a form carries when its XFA entry is a single stream.
func XDP(form1 string) []byte {
	datasets := bytes.TrimPrefix(Datasets(form1), []byte(`<?xml version="1.0" encoding="UTF-8"?>`+"\n"))
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<xdp:xdp xmlns:xdp="http://ns.adobe.com/xdp/" timeStamp="2024-03-18T10:00:00Z">
<template xmlns="http://www.xfa.org/schema/xfa-template/3.3/"><subform name="form1"><field name="One"/></subform></template>
<config xmlns="http://www.xfa.org/schema/xci/3.0/"><present><pdf><version>1.7</version></pdf></present></config>
` + string(datasets) + `
<localeSet xmlns="http://www.xfa.org/schema/xfa-locale-set/2.7/"/>
</xdp:xdp>`)
}
