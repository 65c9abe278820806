package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/itchyny/gojq"
)

type printer struct {
	w   io.Writer
	raw bool
}

// print writes JSON values indented. Text bodies are written as is.
func (p printer) print(value any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		_, err := p.w.Write(v)
		return errors.Wrap(err, "write output")
	}

	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode output")
	}

	_, err = fmt.Fprintln(p.w, string(out))
	return errors.Wrap(err, "write output")
}

func (p printer) printText(value any) error {
	if s, ok := value.(string); ok {
		_, err := fmt.Fprintln(p.w, s)
		return errors.Wrap(err, "write output")
	}

	return p.print(value)
}

// compileJQ parses and compiles a jq expression. An empty expression yields nil.
func compileJQ(expression string) (*gojq.Code, error) {
	if expression == "" {
		return nil, nil
	}

	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, errors.Wrap(err, "invalid jq expression")
	}

	code, err := gojq.Compile(query)
	if err != nil {
		return nil, errors.Wrap(err, "jq compilation failed")
	}

	return code, nil
}

// writeValue prints a decoded response, filtered through code when set.
func writeValue(ctx context.Context, p printer, value any, code *gojq.Code) error {
	if code == nil {
		return p.printText(value)
	}

	iter := code.RunWithContext(ctx, value)
	for {
		result, ok := iter.Next()
		if !ok {
			return nil
		}

		if err, isErr := result.(error); isErr {
			return errors.Wrap(err, "jq")
		}

		var err error
		if p.raw {
			err = p.printText(result)
		} else {
			err = p.print(result)
		}
		if err != nil {
			return err
		}
	}
}
