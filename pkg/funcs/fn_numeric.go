package funcs

import (
	"fmt"
	"math"
)

func numberArg(name string, args []any, i int) (float64, error) {
	n, ok := asNumber(arg(args, i))
	if !ok {
		return 0, fmt.Errorf("%s: argument %d must be a number, got %s", name, i+1, typeName(arg(args, i)))
	}
	return n, nil
}

// numbersOf extracts the numeric members of a sequence, skipping values
// that are not numbers. Aggregations are forgiving about mixed input.
func numbersOf(v any) []float64 {
	items := Seq(v)
	out := make([]float64, 0, len(items))
	for _, item := range items {
		if n, ok := asNumber(item); ok {
			out = append(out, n)
		}
	}
	return out
}

func init() {
	register(&Def{Name: "round", MinArgs: 1, MaxArgs: 2, Impl: func(args []any) (any, error) {
		n, err := numberArg("round", args, 0)
		if err != nil {
			return nil, err
		}
		if len(args) > 1 {
			digits, err := numberArg("round", args, 1)
			if err != nil {
				return nil, err
			}
			scale := math.Pow(10, math.Trunc(digits))
			return math.Round(n*scale) / scale, nil
		}
		return math.Round(n), nil
	}})
	register(&Def{Name: "floor", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		n, err := numberArg("floor", args, 0)
		if err != nil {
			return nil, err
		}
		return math.Floor(n), nil
	}})
	register(&Def{Name: "ceil", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		n, err := numberArg("ceil", args, 0)
		if err != nil {
			return nil, err
		}
		return math.Ceil(n), nil
	}})
	register(&Def{Name: "abs", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		n, err := numberArg("abs", args, 0)
		if err != nil {
			return nil, err
		}
		return math.Abs(n), nil
	}})
	register(&Def{Name: "clamp", MinArgs: 3, MaxArgs: 3, Impl: func(args []any) (any, error) {
		n, err := numberArg("clamp", args, 0)
		if err != nil {
			return nil, err
		}
		lo, err := numberArg("clamp", args, 1)
		if err != nil {
			return nil, err
		}
		hi, err := numberArg("clamp", args, 2)
		if err != nil {
			return nil, err
		}
		return math.Min(math.Max(n, lo), hi), nil
	}})
	register(&Def{Name: "min", MinArgs: 1, MaxArgs: -1, Impl: func(args []any) (any, error) {
		return extremum(args, -1)
	}})
	register(&Def{Name: "max", MinArgs: 1, MaxArgs: -1, Impl: func(args []any) (any, error) {
		return extremum(args, 1)
	}})
	register(&Def{Name: "sum", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		total := 0.0
		for _, n := range numbersOf(arg(args, 0)) {
			total += n
		}
		return total, nil
	}})
	register(&Def{Name: "avg", MinArgs: 1, MaxArgs: 1, Impl: func(args []any) (any, error) {
		nums := numbersOf(arg(args, 0))
		if len(nums) == 0 {
			return nil, nil
		}
		total := 0.0
		for _, n := range nums {
			total += n
		}
		return total / float64(len(nums)), nil
	}})
}

// extremum handles both calling conventions: min(a, b, c) with scalar
// arguments and min(array) with one sequence argument.
func extremum(args []any, dir int) (any, error) {
	var nums []float64
	if len(args) == 1 {
		nums = numbersOf(args[0])
	} else {
		for i := range args {
			n, err := numberArg("min/max", args, i)
			if err != nil {
				return nil, err
			}
			nums = append(nums, n)
		}
	}
	if len(nums) == 0 {
		return nil, nil
	}
	best := nums[0]
	for _, n := range nums[1:] {
		if (dir < 0 && n < best) || (dir > 0 && n > best) {
			best = n
		}
	}
	return best, nil
}
