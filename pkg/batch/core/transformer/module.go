package transformer

import "go.uber.org/fx"

// Module provides a *Registry populated with the builtin transformers.
// Applications add their own with fx.Invoke(func(r *Registry) error { return r.Register(...) }).
var Module = fx.Options(
	fx.Provide(NewDefaultRegistry),
)
