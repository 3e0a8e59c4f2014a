package cli

import (
	"strconv"
	"strings"
)

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// optionalUint32 records whether the flag was given at all, so that an
// explicit zero differs from an absent flag.
type optionalUint32 struct {
	value *uint32
}

func (o *optionalUint32) String() string {
	if o == nil || o.value == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*o.value), 10)
}

func (o *optionalUint32) Set(v string) error {
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return err
	}
	u := uint32(n)
	o.value = &u
	return nil
}

// splitList splits a comma separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
