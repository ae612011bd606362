/*
Package registry keeps the named, long-lived buckets of a process.

Buckets are registered once at startup, either in code or from a YAML file,
and looked up by name afterwards. A name can be registered only once; there
is no way to change a bucket's capacity or interval after the fact.

	reg := registry.New(registry.WithLogger(logger))
	api, err := reg.Register("api", registry.Spec{MaxTokens: 10, Interval: time.Second})
	if err != nil {
		return err
	}
	if api.Allow() {
		serve()
	}

Do runs a function only when the named bucket admits the call:

	ran, err := reg.Do("stdout", func() { fmt.Println("tick") })

A Reporter logs per-bucket accepted and rejected counts on a cron schedule.
*/
package registry
