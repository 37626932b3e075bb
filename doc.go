// Package hsm implements hierarchical state machines.
//
// A Machine is a shared definition: a tree of states addressed by qualified
// names ("caffeinated.running"), and a table of transitions keyed by source
// state and event. Any number of Instances drive independent entities through
// the same Machine. Each Instance tracks its current leaf state, a bounded
// history of previously exited leaves, and a Context carrying data between
// hooks.
//
// Events that a leaf cannot handle are looked up on its ancestors. Taking a
// transition exits states from the current leaf up to (not including) the
// lowest common ancestor of source and target, then enters states down to the
// target leaf, following initial children when the target is composite.
//
//	m, err := hsm.Define("coffee").
//		State("standing", hsm.Initial()).
//		State("walking").
//		State("caffeinated").
//		State("dithering", hsm.Parent("caffeinated"), hsm.Initial()).
//		State("running", hsm.Parent("caffeinated")).
//		Transition("standing", "walk", "walking").
//		Transition("caffeinated", "walk", "caffeinated.running").
//		Wildcard("drink", "caffeinated").
//		Build()
//
//	inst, err := m.NewInstance(nil)
//	err = inst.Trigger("drink") // caffeinated.dithering
//	err = inst.Trigger("walk")  // caffeinated.running
package hsm
