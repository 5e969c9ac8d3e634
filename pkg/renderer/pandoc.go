package renderer

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Format is an export format.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
)

// ParseFormat accepts "md", "markdown", "pdf" and "docx", case-insensitively.
func ParseFormat(s string) (format Format, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md", "markdown":
		format = FormatMarkdown
	case "pdf":
		format = FormatPDF
	case "docx", "word":
		format = FormatDOCX
	default:
		err = errors.Errorf("unsupported format %q (want md, pdf or docx)", s)
	}
	return format, err
}

// ExportOptions tune pandoc. Template is a LaTeX template for PDF or a reference document for DOCX.
type ExportOptions struct {
	Template string
	Pandoc   string
}

// Export writes markdown to outputPath in format. Markdown output is written directly; PDF and DOCX
// go through pandoc.
func Export(ctx context.Context, markdown string, format Format, outputPath string, opts ExportOptions) (err error) {
	if format == FormatMarkdown {
		err = WriteMarkdown(markdown, outputPath)
		return err
	}

	if format != FormatPDF && format != FormatDOCX {
		err = errors.Errorf("unsupported format %q", format)
		return err
	}

	bin := opts.Pandoc
	if bin == "" {
		bin = "pandoc"
	}

	err = checkPandocExists(ctx, bin)
	if err != nil {
		return err
	}

	if opts.Template != "" {
		err = validateFiles(opts.Template)
		if err != nil {
			return err
		}
	}

	outputDir := filepath.Dir(outputPath)
	err = os.MkdirAll(outputDir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", outputDir)
		return err
	}

	args := pandocArgs(format, outputPath, opts.Template)

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = strings.NewReader(markdown)

	if format == FormatPDF && opts.Template != "" {
		templateDir := filepath.Dir(opts.Template)
		texinputs := templateDir + ":" + os.Getenv("TEXINPUTS")
		cmd.Env = append(os.Environ(), "TEXINPUTS="+texinputs)
	}

	var output []byte
	output, err = cmd.CombinedOutput()
	if err != nil {
		err = errors.Wrapf(err, "pandoc failed: %s", string(output))
		return err
	}

	return err
}

// pandocArgs builds the pandoc command line. Markdown is read from stdin.
func pandocArgs(format Format, outputPath, template string) (args []string) {
	args = []string{
		"-f", "markdown",
		"-t", string(format),
		"-o", outputPath,
	}

	switch format {
	case FormatPDF:
		if template != "" {
			args = append(args, "--template", template)
		}
		args = append(args, "--number-sections=false")
	case FormatDOCX:
		if template != "" {
			args = append(args, "--reference-doc", template)
		}
	case FormatMarkdown:
	}

	return args
}

// checkPandocExists verifies pandoc is installed.
func checkPandocExists(ctx context.Context, bin string) (err error) {
	cmd := exec.CommandContext(ctx, bin, "--version")
	err = cmd.Run()
	if err != nil {
		err = errors.New("pandoc not found in PATH (install pandoc to export PDF or DOCX)")
		return err
	}
	return err
}

// validateFiles checks that required files exist.
func validateFiles(paths ...string) (err error) {
	for _, path := range paths {
		_, err = os.Stat(path)
		if os.IsNotExist(err) {
			err = errors.Errorf("file not found: %s", path)
			return err
		}
	}
	return err
}

// WriteMarkdown writes markdown content to a file.
func WriteMarkdown(content, outputPath string) (err error) {
	outputDir := filepath.Dir(outputPath)
	err = os.MkdirAll(outputDir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", outputDir)
		return err
	}

	err = os.WriteFile(outputPath, []byte(content), 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write markdown file: %s", outputPath)
		return err
	}

	return err
}

// CleanupMarkdown removes markdown files after export.
func CleanupMarkdown(paths ...string) (err error) {
	for _, path := range paths {
		err = os.Remove(path)
		if err != nil {
			err = errors.Wrapf(err, "failed to remove markdown file: %s", path)
			return err
		}
	}
	return err
}
