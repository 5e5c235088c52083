package transcript

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	grovelogging "github.com/grovetools/core/logging"
	"github.com/sirupsen/logrus"
)

// maxRawErrorLen caps the raw line excerpt kept in a ParseError.
const maxRawErrorLen = 200

// ErrEmptyTranscript is returned when a transcript yields no entries.
var ErrEmptyTranscript = errors.New("transcript has no entries")

// ParseError records a line that could not be decoded.
type ParseError struct {
	LineNumber int    `json:"lineNumber"`
	Message    string `json:"message"`
	Raw        string `json:"raw"`
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.LineNumber, e.Message)
}

// Parser handles JSONL transcript parsing
type Parser struct {
	decoder Decoder
	now     func() time.Time
	logger  *logrus.Entry
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithDecoder sets the line decoder. The default decodes Claude transcripts.
func WithDecoder(d Decoder) ParserOption {
	return func(p *Parser) { p.decoder = d }
}

// WithParserClock sets the clock used for lines without a usable timestamp.
func WithParserClock(now func() time.Time) ParserOption {
	return func(p *Parser) { p.now = now }
}

// NewParser creates a new transcript parser
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		now:    time.Now,
		logger: grovelogging.NewLogger("agentview.transcript"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.decoder == nil {
		p.decoder = NewClaudeDecoder(p.now)
	}
	return p
}

// ParseLine decodes a single line. Malformed or unusable lines yield nil.
func (p *Parser) ParseLine(line []byte) Entry {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil
	}
	entry, err := p.decoder.DecodeLine(line)
	if err != nil {
		return nil
	}
	return entry
}

// ParseFile parses an entire JSONL file. Lines that fail to decode are
// reported as ParseErrors; the returned error covers I/O failures only.
func (p *Parser) ParseFile(path string) ([]Entry, []ParseError, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return p.ParseReader(file)
}

// ParseReader parses JSONL from a reader, then resolves tool names and
// suppresses duplicate token usage.
func (p *Parser) ParseReader(r io.Reader) ([]Entry, []ParseError, error) {
	var entries []Entry
	var parseErrors []ParseError

	reader := bufio.NewReader(r)
	lineNum := 0
	for {
		line, readErr := reader.ReadBytes('\n')
		if len(line) > 0 {
			lineNum++
			trimmed := bytes.TrimSpace(line)
			if len(trimmed) > 0 {
				entry, err := p.decoder.DecodeLine(trimmed)
				if err != nil {
					parseErrors = append(parseErrors, ParseError{
						LineNumber: lineNum,
						Message:    err.Error(),
						Raw:        truncateRaw(trimmed),
					})
				} else if entry != nil {
					entries = append(entries, entry)
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return entries, parseErrors, fmt.Errorf("read error after %d lines: %w", lineNum, readErr)
		}
	}

	if len(parseErrors) > 0 {
		p.logger.WithField("errors", len(parseErrors)).Debug("Skipped malformed transcript lines")
	}

	entries = ResolveToolNames(entries)
	entries = SuppressDuplicateUsage(entries)
	return entries, parseErrors, nil
}

func truncateRaw(line []byte) string {
	runes := []rune(string(line))
	if len(runes) > maxRawErrorLen {
		return string(runes[:maxRawErrorLen])
	}
	return string(runes)
}
