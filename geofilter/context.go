package geofilter

import "fmt"

// FnImpl is the uniform call interface for registered functions: an ordered
// sequence of typed argument values in, one typed result (or NULL when the
// function's contract defines the condition as indeterminate) or a runtime
// failure out.
type FnImpl func(args []Value) (Value, error)

// Signature is the immutable typed shape of a registered function.
type Signature struct {
	Args   []DataType
	Result DataType
}

func (s Signature) String() string {
	out := "("
	for i, a := range s.Args {
		if i > 0 {
			out += ", "
		}
		out += a.String()
	}
	return out + ") -> " + s.Result.String()
}

type fnInfo struct {
	sig     Signature
	impl    FnImpl
	builtin bool
}

// Context is the mutable configuration bundle: implicit CRS, coordinate
// precision, and the function registry. It is constructed, optionally
// extended with host functions, then frozen. Registration is confined to
// the single-threaded setup phase before freezing.
type Context struct {
	cfg    Config
	crs    CRS
	fns    map[string]fnInfo
	frozen bool
}

// NewContext validates the configuration and pre-seeds the registry with
// the standard operator functions and the builtins.
func NewContext(cfg Config) (*Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	crs, err := NewCRS(cfg.CRS)
	if err != nil {
		return nil, err
	}
	ctx := &Context{cfg: cfg, crs: crs, fns: make(map[string]fnInfo, 64)}
	registerStandard(ctx)
	registerBuiltins(ctx)
	return ctx, nil
}

// Register binds a host-supplied function by name with its expected
// argument and result types. Rejected: empty names, nil implementations,
// any duplicate of an already-bound name (builtin or not), and any attempt
// after the Context has been frozen.
func (c *Context) Register(name string, args []DataType, result DataType, impl FnImpl) error {
	if c.frozen {
		return RegistrationError(name, "context is frozen")
	}
	if name == "" {
		return RegistrationError(name, "function name must not be empty")
	}
	if impl == nil {
		return RegistrationError(name, "function implementation must not be nil")
	}
	for _, a := range args {
		if a == TypeUnknown || a == TypeAny {
			return RegistrationError(name, "argument types must be concrete kinds")
		}
	}
	if prev, ok := c.fns[name]; ok {
		if prev.builtin {
			return RegistrationError(name, "name is bound to a standard function")
		}
		return RegistrationError(name, "name is already registered")
	}
	c.fns[name] = fnInfo{sig: Signature{Args: args, Result: result}, impl: impl}
	return nil
}

// register is the unchecked path used while seeding standard functions.
func (c *Context) register(name string, args []DataType, result DataType, impl FnImpl) {
	c.fns[name] = fnInfo{sig: Signature{Args: args, Result: result}, impl: impl, builtin: true}
}

// Freeze consumes the mutable Context and yields the immutable, shareable
// handle Evaluators bind to. The frozen handle retains the registry by
// reference; nothing is duplicated per Evaluator.
func (c *Context) Freeze() *Frozen {
	c.frozen = true
	return &Frozen{ctx: c}
}

// Frozen is the read-only Context handle. Safe for concurrent use by any
// number of Evaluators without synchronization.
type Frozen struct {
	ctx *Context
}

func (f *Frozen) CRS() CRS { return f.ctx.crs }

func (f *Frozen) Precision() int { return f.ctx.cfg.Precision }

// Lookup returns the registered signature for a function name.
func (f *Frozen) Lookup(name string) (Signature, bool) {
	info, ok := f.ctx.fns[name]
	return info.sig, ok
}

// Call invokes a registered implementation after checking argument count
// and each argument's runtime type against the signature. NULL arguments
// propagate as a NULL result without invoking the implementation.
func (f *Frozen) Call(name string, args []Value) (Value, error) {
	info, ok := f.ctx.fns[name]
	if !ok {
		return Null(), TypeError(name, "function is not registered")
	}
	if len(args) != len(info.sig.Args) {
		return Null(), TypeError(name, fmt.Sprintf(
			"expected %d argument(s), got %d", len(info.sig.Args), len(args)))
	}
	for i, a := range args {
		if a.IsNull() {
			return Null(), nil
		}
		want := info.sig.Args[i]
		if want == TypeAny {
			continue
		}
		if got := a.Type(); !typeMatches(want, got) {
			return Null(), TypeError(name, fmt.Sprintf(
				"argument %d: expected %s, got %s", i+1, want, got))
		}
	}
	out, err := info.impl(args)
	if err != nil {
		return Null(), Wrap(ErrEval, fmt.Sprintf("function %q failed", name), err)
	}
	return out, nil
}

// typeMatches applies exact kind matching, except that Date and Timestamp
// interoperate where order comparison is defined.
func typeMatches(want, got DataType) bool {
	if want == got {
		return true
	}
	return (want == TypeDate || want == TypeTimestamp) &&
		(got == TypeDate || got == TypeTimestamp)
}
