// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Docx extracts paragraph text from DOCX archives by streaming
// word/document.xml. Paragraphs come out one per line in document order;
// non-text elements (images, embedded objects) are skipped.
// Per prd002-text-extraction R3.1-R3.3.
type Docx struct{}

func (Docx) Extract(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("opening archive: %w", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("word/document.xml not found in archive")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("opening document part: %w", err)
	}
	defer rc.Close()

	return paragraphText(rc)
}

// paragraphText streams WordprocessingML and collects the text runs of
// each paragraph. Tabs and explicit breaks inside a run become spaces so a
// paragraph stays on one line.
func paragraphText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		inPara     bool
		inRunText  bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("malformed document part: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				current.Reset()
			case "t":
				inRunText = inPara
			case "tab", "br", "cr":
				if inPara {
					current.WriteByte(' ')
				}
			}

		case xml.CharData:
			if inRunText {
				current.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inRunText = false
			case "p":
				if inPara {
					if text := strings.TrimSpace(current.String()); text != "" {
						paragraphs = append(paragraphs, text)
					}
					inPara = false
				}
			}
		}
	}

	return strings.Join(paragraphs, "\n"), nil
}
