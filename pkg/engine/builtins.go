package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/stlslice/pkg/mesh"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms preset source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: clip-frac -> clip_frac
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value - treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toAxis converts a keyword or string to a mesh.Axis.
func toAxis(s zygo.Sexp) (mesh.Axis, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected axis keyword (:x, :y, :z): %w", err)
	}
	switch name {
	case "x":
		return mesh.AxisX, nil
	case "y":
		return mesh.AxisY, nil
	case "z":
		return mesh.AxisZ, nil
	}
	return 0, fmt.Errorf("invalid axis %q, expected x, y, or z", name)
}

// toSwitch accepts :on/:off keywords, "on"/"off" strings and booleans.
func toSwitch(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	name, err := toKeywordString(s)
	if err != nil {
		return false, fmt.Errorf("expected :on or :off: %w", err)
	}
	switch name {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid switch %q, expected on or off", name)
}

// toRange reads the two positional numbers after an axis keyword,
// swapping them (with a warning) when given high-to-low.
func toRange(fn string, args []zygo.Sexp, warn func(string)) (lo, hi float64, err error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("%s requires a low and a high value, got %d values", fn, len(args))
	}
	lo, err = toFloat64(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%s: low: %w", fn, err)
	}
	hi, err = toFloat64(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%s: high: %w", fn, err)
	}
	if lo > hi {
		warn(fmt.Sprintf("%s: range [%g, %g] is reversed; using [%g, %g]", fn, lo, hi, hi, lo))
		lo, hi = hi, lo
	}
	return lo, hi, nil
}

// axisArg returns the axis named by the first keyword in args, and the
// arguments after it.
func axisArg(fn string, args []zygo.Sexp) (mesh.Axis, []zygo.Sexp, error) {
	if len(args) == 0 {
		return 0, nil, fmt.Errorf("%s requires an axis keyword (:x, :y, :z)", fn)
	}
	a, err := toAxis(args[0])
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w", fn, err)
	}
	return a, args[1:], nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the preset builtins into a zygomys environment.
// The builtins record their effect on p; warn collects non-fatal notes.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, p *Preset, warn func(string)) {

	// -----------------------------------------------------------------------
	// (clip :x -0.5 0.25)
	// (clip :z :min 0)
	// (clip :y :max 10)
	// -----------------------------------------------------------------------
	env.AddFunction("clip", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		a, rest, err := axisArg("clip", args)
		if err != nil {
			return zygo.SexpNull, err
		}

		if len(rest) == 2 {
			if side, ok := isKW(rest[0]); ok {
				if side != "min" && side != "max" {
					return zygo.SexpNull, fmt.Errorf("clip: invalid side %q, expected min or max", side)
				}
				v, err := toFloat64(rest[1])
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("clip: %s: %w", side, err)
				}
				p.Ops = append(p.Ops, BoundsOp{Kind: OpSide, Axis: a, IsMin: side == "min", Lo: v})
				return zygo.SexpNull, nil
			}
		}

		lo, hi, err := toRange("clip", rest, warn)
		if err != nil {
			return zygo.SexpNull, err
		}
		p.Ops = append(p.Ops, BoundsOp{Kind: OpRange, Axis: a, Lo: lo, Hi: hi})
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (clip-frac :z 0 0.5)
	//
	// Registered as "clip_frac"; the preprocessor rewrites the hyphen.
	// -----------------------------------------------------------------------
	env.AddFunction("clip_frac", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		a, rest, err := axisArg("clip-frac", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		lo, hi, err := toRange("clip-frac", rest, warn)
		if err != nil {
			return zygo.SexpNull, err
		}
		if lo < 0 || hi > 1 {
			warn(fmt.Sprintf("clip-frac: [%g, %g] extends past the model; clamped to [0, 1]", lo, hi))
			lo, hi = clamp01(lo), clamp01(hi)
		}
		p.Ops = append(p.Ops, BoundsOp{Kind: OpFraction, Axis: a, Lo: lo, Hi: hi})
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (reset-bounds)
	// -----------------------------------------------------------------------
	env.AddFunction("reset_bounds", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 0 {
			return zygo.SexpNull, fmt.Errorf("reset-bounds takes no arguments, got %d", len(args))
		}
		p.Ops = append(p.Ops, BoundsOp{Kind: OpReset})
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (slicing :on) (fill :off) (wireframe :on)
	// -----------------------------------------------------------------------
	toggles := map[string]**bool{
		"slicing":   &p.Slicing,
		"fill":      &p.Fill,
		"wireframe": &p.Wireframe,
	}
	for fn, dst := range toggles {
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 1 {
				return zygo.SexpNull, fmt.Errorf("%s requires one argument (:on or :off), got %d", fn, len(args))
			}
			on, err := toSwitch(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			*dst = &on
			return zygo.SexpNull, nil
		})
	}

	// -----------------------------------------------------------------------
	// (model "bracket" :cells 48)
	// -----------------------------------------------------------------------
	env.AddFunction("model", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("model requires a name argument")
		}
		s, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("model: name: %w", err)
		}
		p.Model = s

		if v, ok := pa.kw["cells"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("model: cells: %w", err)
			}
			if f < 1 {
				return zygo.SexpNull, fmt.Errorf("model: cells must be positive, got %g", f)
			}
			if f > MaxCells {
				warn(fmt.Sprintf("model: cells %g is too fine; clamped to %d", f, MaxCells))
				f = MaxCells
			}
			p.Cells = int(f)
		}
		return zygo.SexpNull, nil
	})
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
