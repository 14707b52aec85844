// Package seed loads YAML fixtures into a data store.
//
// A fixture lists packages, grains, tokens, cached token info, sessions and
// grain sizes:
//
//	grains:
//	  - id: g1
//	    user_id: alice
//	    package_id: pkg-etherpad
//	    title: Groceries
//	tokens:
//	  - id: t1
//	    grain_id: g1
//	    user_id: alice
//	    owner: {user_id: bob, title: Alice's list}
//	    created_at: 2024-03-01T12:00:00Z
//
// Unknown fields are rejected so typos surface at startup. LoadGlob accepts
// doublestar patterns such as "fixtures/**/*.yaml" to load several files.
package seed
