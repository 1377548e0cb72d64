// Package prt is the boundary to the procedural rule engine. The engine is
// a black box: it takes initial shapes (geometry, rule file, start rule,
// random seed and an attribute map bound to a resolve map), runs the
// requested encoders and reports results through Callbacks. Generate is a
// blocking call without cancellation.
package prt
