// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

package preview

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"
)

// Document is the content of a proposal preview page.
type Document struct {
	Heading   string   `json:"heading" validate:"required"`
	Recipient string   `json:"recipient" validate:"required"`
	Content   []string `json:"content"`
	// MarginTop nudges the text block down the page, in points. The
	// sign is ignored; a nudge is always downward.
	MarginTop float64 `json:"marginTop"`
}

// Renderer turns a Document into PDF bytes.
type Renderer interface {
	Render(doc Document) ([]byte, error)
}

// Layout constants for the preview page, in points.
const (
	lineGap = 12.0

	headingSize   = 12.0
	recipientSize = 42.0
	contentSize   = 12.0

	// The text block starts 28% down the page.
	blockStartRatio = 0.28
)

// Brand palette.
var (
	inkDark = [3]int{21, 96, 102}
	inkTeal = [3]int{46, 148, 143}
)

// line is one rendered row of the text block.
type line struct {
	text   string
	size   float64
	colour [3]int
	gap    float64
}

// layout translates a Document into the ordered rows of the text
// block: heading, uppercased recipient, then each content line.
func layout(doc Document) []line {
	lines := []line{
		{text: doc.Heading, size: headingSize, colour: inkDark, gap: lineGap},
		{text: strings.ToUpper(doc.Recipient), size: recipientSize, colour: inkTeal, gap: lineGap * 2},
	}
	for _, c := range doc.Content {
		lines = append(lines, line{text: c, size: contentSize, colour: inkDark, gap: lineGap})
	}
	return lines
}

// PDFRenderer renders previews with gofpdf onto a blank A4 page.
type PDFRenderer struct{}

// NewPDFRenderer returns a ready Renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render draws the document centered on an A4 portrait page.
func (p *PDFRenderer) Render(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.AddPage()
	pageWidth, _ := pdf.GetPageSize()

	y := blockStart(doc.MarginTop)
	for _, ln := range layout(doc) {
		pdf.SetFont("Helvetica", "B", ln.size)
		pdf.SetTextColor(ln.colour[0], ln.colour[1], ln.colour[2])

		width := pdf.GetStringWidth(ln.text)
		y += ln.size
		pdf.Text((pageWidth-width)/2, y, ln.text)
		y += ln.gap
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}
	return buf.Bytes(), nil
}

// a4Height is the portrait A4 page height in points.
const a4Height = 841.89

// blockStart computes the top of the text block: 28% down the page plus the
// signed nudge. Negative margins lift the block, positive margins lower it.
func blockStart(marginTop float64) float64 {
	return a4Height*blockStartRatio + marginTop
}
