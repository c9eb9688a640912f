// Package manifest reads the direct dependencies of a Ruby project from a
// Gemfile or a gemspec.
//
// Both readers implement [deps.ManifestReader] and return pending records.
// Only the groups listed in [Options.Groups] are kept; a gem declared
// outside any group block belongs to "runtime", and Bundler's :default
// group is treated as the same thing.
//
// Parsing is line based and understands the forms found in real projects:
//
//	gem 'rails', '~> 7.0', '>= 7.0.4'
//	gem "pg", require: false, group: :production
//	gem 'rspec', :groups => [:development, :test]
//	group :development, :test do ... end
//	s.add_dependency 'rack', '>= 2.2'
//	spec.add_runtime_dependency(%q<mime-types>, ["~> 3.0"])
//
// It does not evaluate Ruby: conditionals are entered unconditionally and
// eval_gemfile is ignored.
package manifest
