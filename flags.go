package chrisapp

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// longName strips the leading dashes off a switch, giving the name the
// argument engine knows the flag by.
func longName(flag string) string {
	return strings.TrimLeft(flag, "-")
}

// installParameter registers a normalized parameter on a flag set. Booleans
// get a NoOptDefVal equal to the negation of their default so that a bare
// flag always toggles away from it. Path parameters are carried as strings;
// normalizePathList vets them after parsing.
func installParameter(fs *pflag.FlagSet, p Parameter) {
	name := longName(p.Flag)
	short := longName(p.ShortFlag)
	switch p.Type {
	case TypeString:
		def, _ := p.Default.(string)
		fs.StringP(name, short, def, p.Help)
	case TypeInt:
		def, _ := p.Default.(int)
		fs.IntP(name, short, def, p.Help)
	case TypeFloat:
		def, _ := p.Default.(float64)
		fs.Float64P(name, short, def, p.Help)
	case TypeBool:
		def, _ := p.Default.(bool)
		fs.BoolP(name, short, def, p.Help)
		fs.Lookup(name).NoOptDefVal = strconv.FormatBool(!def)
	case TypePath, TypeUnextPath:
		fs.StringP(name, short, "", p.Help)
	}
}

// paramValue reads the parsed value of a parameter back out of the flag set
// as its canonical Go type.
func paramValue(fs *pflag.FlagSet, p Parameter) any {
	name := longName(p.Flag)
	switch p.Type {
	case TypeString, TypePath, TypeUnextPath:
		v, _ := fs.GetString(name)
		return v
	case TypeInt:
		v, _ := fs.GetInt(name)
		return v
	case TypeFloat:
		v, _ := fs.GetFloat64(name)
		return v
	case TypeBool:
		v, _ := fs.GetBool(name)
		return v
	}
	return nil
}

// normalizePathList strips surrounding whitespace off every element of a
// comma-separated path list and rejoins it. With checkExists set, every
// element must name an existing path.
func normalizePathList(value string, checkExists bool) (string, error) {
	parts := strings.Split(value, ",")
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if checkExists {
			if _, err := os.Stat(part); err != nil {
				return "", fmt.Errorf("%w: %q", ErrPathNotFound, part)
			}
		}
		parts[i] = part
	}
	return strings.Join(parts, ","), nil
}
