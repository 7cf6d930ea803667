// Package gen turns an assembled metadata.Organization into declaration
// units ready for rendering.
//
// # Architecture
//
// The pipeline flow:
//
//	metadata.Organization (entities, option sets, message graph)
//	        ↓
//	   Services (Naming, Filter, TypeMapping, Customizer)
//	        ↓
//	   Generate (sequential walk, one Unit per output file)
//	        ↓
//	   decl.Namespace per unit
//	        ↓
//	   render.Renderer / render.Writer
//
// # Services
//
// Every decision point is a service reached through *Services, which is
// passed to each call so that an override of one service is observed by the
// others:
//
//   - NamingService: identifiers, memoized per metadata node for the run
//   - FilterService: which option sets, entities, attributes, relationships,
//     messages and pairs become declarations
//   - TypeMappingService: metadata types to decl.TypeRef
//   - Customizer: a final rewrite of each namespace
//
// Override one with a ServicesOption:
//
//	s := gen.NewServices(cfg, org, gen.WithFilter(myFilter))
//	res, err := gen.Generate(ctx, org, s)
//
// # Output modes
//
// Single mode yields one unit holding, in order: global option sets,
// entity classes with their local enums, global option sets first reached
// through an entity, the service context, messages and the enum helper.
// Split mode yields one unit per option set, entity and message, plus the
// context and the helper; empty units are dropped.
//
// # Error Handling
//
//   - ConfigError: invalid configuration, aggregated by ApplyAll and Validate
//   - GenerationError: a failed phase, such as a customizer error
//   - TypeUnavailableError: a message field formatter with no type mapping;
//     the pair is skipped with a warning and generation continues
//
// Example error handling:
//
//	if err := cfg.Validate(); err != nil {
//	    if gen.IsConfigError(err) {
//	        // fix settings
//	    }
//	}
package gen
