package uci

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Option is an engine parameter settable with "setoption".
type Option interface {
	UciName() string
	UciString() string
	Set(s string) error
}

type BoolOption struct {
	Name  string
	Value *bool
}

func (opt *BoolOption) UciName() string {
	return opt.Name
}

func (opt *BoolOption) UciString() string {
	return fmt.Sprintf("option name %v type check default %v", opt.Name, *opt.Value)
}

func (opt *BoolOption) Set(s string) error {
	var v, err = strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("option %v: %w", opt.Name, err)
	}
	*opt.Value = v
	return nil
}

type IntOption struct {
	Name  string
	Min   int
	Max   int
	Value *int
}

func (opt *IntOption) UciName() string {
	return opt.Name
}

func (opt *IntOption) UciString() string {
	return fmt.Sprintf("option name %v type spin default %v min %v max %v",
		opt.Name, *opt.Value, opt.Min, opt.Max)
}

func (opt *IntOption) Set(s string) error {
	var v, err = strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("option %v: %w", opt.Name, err)
	}
	if v < opt.Min || v > opt.Max {
		return fmt.Errorf("option %v: %v out of range [%v, %v]", opt.Name, v, opt.Min, opt.Max)
	}
	*opt.Value = v
	return nil
}

// parseSetOption splits "name <words...> value <words...>".
// Option names may contain spaces, e.g. "Skill Level".
func parseSetOption(fields []string) (name, value string, err error) {
	if len(fields) < 2 || fields[0] != "name" {
		return "", "", errors.New("invalid setoption arguments")
	}
	var valueIndex = findIndexString(fields, "value")
	if valueIndex == -1 {
		return strings.Join(fields[1:], " "), "", nil
	}
	if valueIndex < 2 {
		return "", "", errors.New("invalid setoption arguments")
	}
	return strings.Join(fields[1:valueIndex], " "), strings.Join(fields[valueIndex+1:], " "), nil
}

func findOption(options []Option, name string) Option {
	for _, option := range options {
		if strings.EqualFold(option.UciName(), name) {
			return option
		}
	}
	return nil
}

func findIndexString(slice []string, value string) int {
	for p, v := range slice {
		if v == value {
			return p
		}
	}
	return -1
}
