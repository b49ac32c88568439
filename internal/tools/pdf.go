package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ReadPDFTool extracts text from PDF files.
type ReadPDFTool struct {
	MaxOutputBytes int
}

func (t *ReadPDFTool) Name() string { return "read_pdf" }

func (t *ReadPDFTool) Description() string {
	return "Read and extract text from a PDF file"
}

func (t *ReadPDFTool) Params() []Param {
	return []Param{
		{Name: "path", Type: "string", Description: "Path to the PDF file", Required: true},
		{Name: "pages", Type: "string", Description: "Page range (e.g. '1-5', '1,3,5', 'all')"},
	}
}

func (t *ReadPDFTool) Execute(ctx context.Context, args Args) Result {
	path, err := args.RequiredString("path")
	if err != nil {
		return Errorf("%v", err)
	}
	pageSpec, ok, err := args.OptionalString("pages")
	if err != nil {
		return Errorf("%v", err)
	}
	if !ok || pageSpec == "" {
		pageSpec = "all"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Errorf("PDF file not found: %s", path)
	}

	output, err := extractPDFText(path, pageSpec)
	if err != nil {
		return Errorf("Error reading PDF: %v. File may be corrupted or encrypted.", err)
	}

	limit := t.MaxOutputBytes
	if limit <= 0 {
		limit = 10000
	}
	total := len(output)
	if total > limit {
		output = output[:limit] + fmt.Sprintf("\n\n[Truncated. Total length: %d characters]", total)
	}
	return Ok(output)
}

// extractPDFText renders the selected pages with page markers. The pdf
// library panics on some malformed files; recover maps that to an error.
func extractPDFText(path, pageSpec string) (output string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()

	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	total := reader.NumPage()
	pages, err := parsePageRange(pageSpec, total)
	if err != nil {
		return "", err
	}

	var sections []string
	for _, pageNum := range pages {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, textErr := page.GetPlainText(nil)
		if textErr != nil || strings.TrimSpace(text) == "" {
			continue
		}
		sections = append(sections, fmt.Sprintf("--- Page %d ---\n%s\n", pageNum, strings.TrimSpace(text)))
	}
	if len(sections) == 0 {
		return "", fmt.Errorf("no extractable text on the selected pages")
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "PDF: %s\n", filepath.Base(path))
	fmt.Fprintf(&builder, "Total Pages: %d\n", total)
	fmt.Fprintf(&builder, "Extracted Pages: %d\n\n", len(sections))
	builder.WriteString(strings.Join(sections, "\n"))
	return builder.String(), nil
}

// parsePageRange expands 'all', 'N-M', or 'a,b,c' into page numbers.
func parsePageRange(spec string, total int) ([]int, error) {
	spec = strings.TrimSpace(strings.ToLower(spec))
	if spec == "" || spec == "all" {
		pages := make([]int, 0, total)
		for i := 1; i <= total; i++ {
			pages = append(pages, i)
		}
		return pages, nil
	}

	seen := map[int]bool{}
	var pages []int
	addPage := func(n int) {
		if n >= 1 && n <= total && !seen[n] {
			seen[n] = true
			pages = append(pages, n)
		}
	}

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if start, end, found := strings.Cut(part, "-"); found {
			from, err := strconv.Atoi(strings.TrimSpace(start))
			if err != nil {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
			to, err := strconv.Atoi(strings.TrimSpace(end))
			if err != nil {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
			for n := from; n <= to; n++ {
				addPage(n)
			}
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid page number %q", part)
		}
		addPage(n)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("page range %q selects no pages (document has %d)", spec, total)
	}
	sort.Ints(pages)
	return pages, nil
}

// PDFInfoTool reports metadata about a PDF file.
type PDFInfoTool struct{}

func (t *PDFInfoTool) Name() string { return "pdf_info" }

func (t *PDFInfoTool) Description() string {
	return "Get metadata and information about a PDF file"
}

func (t *PDFInfoTool) Params() []Param {
	return []Param{
		{Name: "path", Type: "string", Description: "Path to the PDF file", Required: true},
	}
}

func (t *PDFInfoTool) Execute(ctx context.Context, args Args) Result {
	path, err := args.RequiredString("path")
	if err != nil {
		return Errorf("%v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Errorf("PDF file not found: %s", path)
	}

	output, err := describePDF(path)
	if err != nil {
		return Errorf("Error getting PDF info: %v", err)
	}
	return Ok(output)
}

func describePDF(path string) (output string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()

	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	info, statErr := os.Stat(path)
	if statErr != nil {
		return "", statErr
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "PDF Information: %s\n\n", filepath.Base(path))
	fmt.Fprintf(&builder, "Number of Pages: %d\n", reader.NumPage())
	fmt.Fprintf(&builder, "File Size: %.2f KB\n", float64(info.Size())/1024)

	meta := reader.Trailer().Key("Info")
	fields := []struct{ label, key string }{
		{"Title", "Title"},
		{"Author", "Author"},
		{"Subject", "Subject"},
		{"Creator", "Creator"},
		{"Producer", "Producer"},
		{"Created", "CreationDate"},
		{"Modified", "ModDate"},
	}
	var metaLines []string
	if !meta.IsNull() {
		for _, field := range fields {
			if value := meta.Key(field.key).Text(); value != "" {
				metaLines = append(metaLines, fmt.Sprintf("  %s: %s", field.label, value))
			}
		}
	}
	if len(metaLines) > 0 {
		builder.WriteString("\nMetadata:\n")
		builder.WriteString(strings.Join(metaLines, "\n"))
	}
	return builder.String(), nil
}

// SearchPDFTool finds text matches inside a PDF file.
type SearchPDFTool struct{}

func (t *SearchPDFTool) Name() string { return "search_pdf" }

func (t *SearchPDFTool) Description() string {
	return "Search for text within a PDF file"
}

func (t *SearchPDFTool) Params() []Param {
	return []Param{
		{Name: "path", Type: "string", Description: "Path to the PDF file", Required: true},
		{Name: "query", Type: "string", Description: "Text to search for", Required: true},
	}
}

// pdfMatch is one text hit with its surrounding context.
type pdfMatch struct {
	Page    int
	Context string
}

func (t *SearchPDFTool) Execute(ctx context.Context, args Args) Result {
	path, err := args.RequiredString("path")
	if err != nil {
		return Errorf("%v", err)
	}
	query, err := args.RequiredString("query")
	if err != nil {
		return Errorf("%v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Errorf("PDF file not found: %s", path)
	}

	matches, err := searchPDF(path, query)
	if err != nil {
		return Errorf("Error searching PDF: %v", err)
	}
	if len(matches) == 0 {
		return Ok(fmt.Sprintf("No matches found for '%s' in %s", query, filepath.Base(path)))
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Found %d matches for '%s' in %s:\n\n", len(matches), query, filepath.Base(path))
	shown := matches
	if len(shown) > 10 {
		shown = shown[:10]
	}
	for i, match := range shown {
		fmt.Fprintf(&builder, "%d. Page %d:\n", i+1, match.Page)
		fmt.Fprintf(&builder, "   %s\n\n", match.Context)
	}
	if len(matches) > 10 {
		fmt.Fprintf(&builder, "... and %d more matches\n", len(matches)-10)
	}
	return Ok(strings.TrimSpace(builder.String()))
}

func searchPDF(path, query string) (matches []pdfMatch, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()

	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	needle := strings.ToLower(query)
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, textErr := page.GetPlainText(nil)
		if textErr != nil {
			continue
		}
		haystack := strings.ToLower(text)
		offset := 0
		for {
			idx := strings.Index(haystack[offset:], needle)
			if idx < 0 {
				break
			}
			at := offset + idx
			start := at - 50
			if start < 0 {
				start = 0
			}
			end := at + len(needle) + 50
			if end > len(text) {
				end = len(text)
			}
			context := strings.Join(strings.Fields(text[start:end]), " ")
			matches = append(matches, pdfMatch{Page: pageNum, Context: "..." + context + "..."})
			offset = at + len(needle)
		}
	}
	return matches, nil
}

// FindPDFsTool lists PDF files in a directory.
type FindPDFsTool struct{}

func (t *FindPDFsTool) Name() string { return "find_pdfs" }

func (t *FindPDFsTool) Description() string {
	return "Find all PDF files in a directory"
}

func (t *FindPDFsTool) Params() []Param {
	return []Param{
		{Name: "path", Type: "string", Description: "Directory path to scan (default: current directory)"},
		{Name: "recursive", Type: "boolean", Description: "Search subdirectories (default: false)"},
	}
}

func (t *FindPDFsTool) Execute(ctx context.Context, args Args) Result {
	path, ok, err := args.OptionalString("path")
	if err != nil {
		return Errorf("%v", err)
	}
	if !ok || path == "" {
		path = "."
	}
	recursive, err := args.OptionalBool("recursive")
	if err != nil {
		return Errorf("%v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Errorf("Directory not found: %s", path)
		}
		return Errorf("stat %s: %v", path, err)
	}
	if !info.IsDir() {
		return Errorf("Not a directory: %s", path)
	}

	type pdfFile struct {
		name string
		path string
		size int64
	}
	var found []pdfFile
	collect := func(filePath string, entry os.FileInfo) {
		if strings.EqualFold(filepath.Ext(filePath), ".pdf") {
			found = append(found, pdfFile{name: filepath.Base(filePath), path: filePath, size: entry.Size()})
		}
	}

	if recursive != nil && *recursive {
		walkErr := filepath.WalkDir(path, func(filePath string, entry os.DirEntry, err error) error {
			if err != nil || entry.IsDir() {
				return err
			}
			fileInfo, infoErr := entry.Info()
			if infoErr != nil {
				return infoErr
			}
			collect(filePath, fileInfo)
			return nil
		})
		if walkErr != nil {
			return Errorf("Error scanning directory: %v", walkErr)
		}
	} else {
		entries, readErr := os.ReadDir(path)
		if readErr != nil {
			return Errorf("Error scanning directory: %v", readErr)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			fileInfo, infoErr := entry.Info()
			if infoErr != nil {
				continue
			}
			collect(filepath.Join(path, entry.Name()), fileInfo)
		}
	}

	if len(found) == 0 {
		return Ok(fmt.Sprintf("No PDF files found in %s", path))
	}
	sort.Slice(found, func(i, j int) bool { return found[i].path < found[j].path })

	var builder strings.Builder
	fmt.Fprintf(&builder, "Found %d PDF file(s) in %s:\n\n", len(found), path)
	for _, file := range found {
		fmt.Fprintf(&builder, "%s\n", file.name)
		fmt.Fprintf(&builder, "   Path: %s\n", file.path)
		fmt.Fprintf(&builder, "   Size: %.2f KB\n\n", float64(file.size)/1024)
	}
	return Ok(strings.TrimSpace(builder.String()))
}
