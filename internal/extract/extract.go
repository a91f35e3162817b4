// Package extract turns local document files into plain text for the ingest
// pipeline. Extraction stops at whole-document text; chunking is owned by
// the splitter.
package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"text-indexer/internal/chunk"
	"text-indexer/internal/webpage"
)

// File extracts the text of a document and a Source describing it. The
// source key is the file path; attributes carry the file name, type and the
// page/sheet/slide count where the format has one.
func File(path string) (string, chunk.Source, error) {
	src := chunk.Source{
		Key: path,
		Attrs: map[string]string{
			"file_name": filepath.Base(path),
		},
	}
	ext := strings.ToLower(filepath.Ext(path))
	src.Attrs["file_type"] = strings.TrimPrefix(ext, ".")

	var text string
	var err error
	switch ext {
	case ".pdf":
		text, err = extractPDF(path, src.Attrs)
	case ".docx":
		text, err = extractDOCX(path)
	case ".pptx":
		text, err = extractPPTX(path, src.Attrs)
	case ".xlsx":
		text, err = extractXLSX(path, src.Attrs)
	case ".ods":
		text, err = extractODS(path, src.Attrs)
	case ".md", ".markdown":
		text, err = extractMarkdown(path)
	case ".txt":
		var data []byte
		data, err = os.ReadFile(path)
		text = string(data)
	default:
		return "", chunk.Source{}, fmt.Errorf("unsupported file format: %s", ext)
	}
	if err != nil {
		return "", chunk.Source{}, err
	}
	return text, src, nil
}

func extractPDF(path string, attrs map[string]string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", err
	}
	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return "", err
	}

	numPages := reader.NumPage()
	attrs["pages"] = strconv.Itoa(numPages)

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		pageText, err := reader.Page(i).GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(pageText)
	}
	return sb.String(), nil
}

func extractDOCX(path string) (string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", err
	}
	defer r.Close()
	return r.Editable().GetContent(), nil
}

func extractPPTX(path string, attrs map[string]string) (string, error) {
	f, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var slides []string
	for _, file := range f.File {
		if !strings.HasPrefix(file.Name, "ppt/slides/slide") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		if text := extractDrawingText(string(data)); strings.TrimSpace(text) != "" {
			slides = append(slides, text)
		}
	}
	attrs["slides"] = strconv.Itoa(len(slides))
	return strings.Join(slides, "\n\n"), nil
}

func extractXLSX(path string, attrs map[string]string) (string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, sheet := range f.Sheets {
		sb.WriteString(fmt.Sprintf("## Sheet: %s\n", sheet.Name))
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				sb.WriteString(cell.String() + "\t")
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	attrs["sheets"] = strconv.Itoa(len(f.Sheets))
	return sb.String(), nil
}

func extractODS(path string, attrs map[string]string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	var sb strings.Builder
	for _, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("## Sheet: %s\n", name))
		for _, row := range rows {
			for _, cell := range row {
				sb.WriteString(cell + "\t")
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	attrs["sheets"] = strconv.Itoa(len(sheets))
	return sb.String(), nil
}

// extractMarkdown renders markdown to HTML and flattens that to plain text,
// so formatting markers never end up in the index.
func extractMarkdown(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert(data, &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return webpage.Text(buf.String())
}

// extractDrawingText pulls the <a:t> runs out of a slide's drawing XML.
func extractDrawingText(xmlContent string) string {
	var sb strings.Builder
	parts := strings.Split(xmlContent, "<a:t>")
	for i, part := range parts {
		if i == 0 {
			continue
		}
		if endIdx := strings.Index(part, "</a:t>"); endIdx >= 0 {
			sb.WriteString(part[:endIdx] + " ")
		}
	}
	return sb.String()
}
