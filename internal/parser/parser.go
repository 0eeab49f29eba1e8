package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	stderrors "errors" // Standard errors package
	"github.com/mcncl/smtbridge/internal/document"
	"github.com/mcncl/smtbridge/internal/errors" // Custom errors package
)

// Parse converts JSON data from an io.Reader into a document node. Object key
// order is preserved and numeric literals keep their subtype.
func Parse(reader io.Reader) (document.Node, error) {
	decoder := json.NewDecoder(reader)
	decoder.UseNumber() // Ensure numbers are read as json.Number

	root, err := decodeValue(decoder)
	if err != nil {
		return document.Node{}, wrapDecodeError(err)
	}

	// Anything but whitespace after the first value is rejected.
	if _, err := decoder.Token(); err != io.EOF {
		if err != nil {
			return document.Node{}, errors.NewParsingError("invalid trailing data after first JSON value", err)
		}
		return document.Node{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
	}

	return root, nil
}

// ParseObject parses JSON whose root must be an object.
func ParseObject(reader io.Reader) (*document.Object, error) {
	root, err := Parse(reader)
	if err != nil {
		return nil, err
	}
	if root.Kind() != document.KindObject {
		return nil, errors.NewParsingError(
			fmt.Sprintf("expected a JSON object at the root, got %s", root.Kind()),
			errors.ErrInvalidJSON,
		)
	}
	return root.AsObject(), nil
}

func wrapDecodeError(err error) error {
	if stderrors.Is(err, io.EOF) {
		// Decode returns io.EOF only when nothing at all was read.
		return errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}
	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		return errors.NewParsingError("JSON syntax error: unexpected EOF", errors.ErrInvalidJSON)
	}
	var syntaxError *json.SyntaxError
	if stderrors.As(err, &syntaxError) {
		return errors.NewParsingError(
			fmt.Sprintf("JSON syntax error at offset %d", syntaxError.Offset),
			errors.ErrInvalidJSON,
		)
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return errors.NewParsingError("failed to decode JSON", err)
}

// decodeValue reads one complete JSON value from the token stream.
func decodeValue(decoder *json.Decoder) (document.Node, error) {
	tok, err := decoder.Token()
	if err != nil {
		return document.Node{}, err
	}
	return decodeToken(decoder, tok)
}

// nestedToken reads the next token inside an open object or array, where
// running out of input means the document was cut short.
func nestedToken(decoder *json.Decoder) (json.Token, error) {
	tok, err := decoder.Token()
	if err == io.EOF {
		return nil, io.ErrUnexpectedEOF
	}
	return tok, err
}

func decodeNested(decoder *json.Decoder) (document.Node, error) {
	tok, err := nestedToken(decoder)
	if err != nil {
		return document.Node{}, err
	}
	return decodeToken(decoder, tok)
}

func decodeToken(decoder *json.Decoder, tok json.Token) (document.Node, error) {
	switch v := tok.(type) {
	case nil:
		return document.Null(), nil
	case bool:
		return document.Bool(v), nil
	case string:
		return document.String(v), nil
	case json.Number:
		node, err := document.NumberFromText(v.String())
		if err != nil {
			return document.Node{}, errors.NewParsingError("invalid number literal", err)
		}
		return node, nil
	case json.Delim:
		switch v {
		case '{':
			return decodeObject(decoder)
		case '[':
			return decodeArray(decoder)
		}
	}
	return document.Node{}, errors.NewParsingError(fmt.Sprintf("unexpected JSON token %v", tok), errors.ErrInvalidJSON)
}

func decodeObject(decoder *json.Decoder) (document.Node, error) {
	obj := document.NewObject()
	for decoder.More() {
		tok, err := nestedToken(decoder)
		if err != nil {
			return document.Node{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return document.Node{}, errors.NewParsingError(fmt.Sprintf("unexpected object key %v", tok), errors.ErrInvalidJSON)
		}
		value, err := decodeNested(decoder)
		if err != nil {
			return document.Node{}, err
		}
		obj.Set(key, value)
	}
	// Consume the closing '}'.
	if _, err := nestedToken(decoder); err != nil {
		return document.Node{}, err
	}
	return document.FromObject(obj), nil
}

func decodeArray(decoder *json.Decoder) (document.Node, error) {
	arr := document.Array{}
	for decoder.More() {
		value, err := decodeNested(decoder)
		if err != nil {
			return document.Node{}, err
		}
		arr = append(arr, value)
	}
	// Consume the closing ']'.
	if _, err := nestedToken(decoder); err != nil {
		return document.Node{}, err
	}
	return document.FromArray(arr), nil
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (document.Node, error) {
	// TrimSpace is important here because an empty string reader will give io.EOF to Decode,
	// but a string with only spaces might not, depending on the decoder's behavior.
	if strings.TrimSpace(jsonString) == "" {
		return document.Node{}, errors.NewInputError("input string is empty or consists only of whitespace", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(jsonString))
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (document.Node, error) {
	if strings.TrimSpace(filePath) == "" {
		return document.Node{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		// Check if the file doesn't exist
		if os.IsNotExist(err) {
			return document.Node{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return document.Node{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	// Check for empty file before parsing
	stat, err := file.Stat()
	if err != nil {
		return document.Node{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return document.Node{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	return Parse(file)
}
