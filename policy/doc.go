// Package policy lets users override which metadata nodes are generated.
//
// A Policy is an ordered chain of rules. Each rule looks at one Node (an
// entity, attribute, option set, relationship or message) and returns a
// decision:
//
//   - Allow: generate the node whatever the default filter says
//   - Deny: never generate the node
//   - Skip (or nil): abstain and let the next rule decide
//
// The first Allow or Deny ends the evaluation. When every rule abstains,
// the default filter service of the run decides.
//
// Rules are usually written as expressions in a rule file:
//
//	rules:
//	  - deny: kind == "entity" && entity startsWith "msdyn_"
//	  - allow: kind == "message" && message in ["new_Approve", "new_Reject"]
//	  - deny: kind == "attribute" && type == "Virtual"
//
// and layered over the filter service with NewFilter:
//
//	p, err := policy.Load("rules.yaml")
//	if err != nil {
//	    return err
//	}
//	base := gen.NewFilter(cfg)
//	svc := gen.NewServices(cfg, org, gen.WithFilter(policy.NewFilter(base, p, log)))
package policy
