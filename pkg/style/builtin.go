package style

// builtinGoogle is Google Java Style.
var builtinGoogle = NewProfile(Google).
	IndentMultiplier(1).
	Describe("Google Java Style: 2-space blocks, 4-space continuations").
	Build()

// builtinAOSP doubles every indent.
var builtinAOSP = NewProfile(AOSP).
	IndentMultiplier(2).
	Describe("Android Open Source Project: 4-space blocks, 8-space continuations").
	Build()

// builtinCustomGoogle is the default profile.
var builtinCustomGoogle = NewProfile(CustomGoogle).
	IndentMultiplier(2).
	Describe("Google Java Style layout with 4-space blocks").
	Build()

// Built-in profiles are registered automatically when the package is
// loaded.
func init() {
	Register(builtinGoogle)
	Register(builtinAOSP)
	Register(builtinCustomGoogle)
}
