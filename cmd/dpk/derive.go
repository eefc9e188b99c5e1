package main

import (
	"fmt"
	"io"

	"github.com/mycelian/partitionkey"
)

func readEvent(in io.Reader, args []string) ([]byte, error) {
	if len(args) == 1 && args[0] != "-" {
		return []byte(args[0]), nil
	}
	return io.ReadAll(in)
}

func runDerive(d *partitionkey.Deriver, data []byte, explain bool, out io.Writer) error {
	res, err := d.ResolveJSON(data)
	if err != nil {
		return fmt.Errorf("derive partition key: %w", err)
	}
	if explain {
		_, err = fmt.Fprintf(out, "%s\t%s\n", res.Key, res.Source)
	} else {
		_, err = fmt.Fprintln(out, res.Key)
	}
	return err
}
