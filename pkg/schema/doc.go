// Package schema defines the form schema model shared by the evaluation
// engine, the builder, persistence backends and the CLI.
//
// A FormSchema is an ordered list of Fields. Each Field has a FieldType, an
// ordered chain of ValidationRules and an optional Derivation whose formula
// references other fields with `${id}` markers. Field values cross the engine
// boundary as Value, a closed variant of String, Number, Bool and Absent, so
// every rule and evaluator pattern-matches explicitly instead of guessing at
// dynamic types.
//
// Schemas round-trip losslessly through JSON and YAML using the persisted
// shape {id, name, createdAt, fields:[{id, label, type, required,
// defaultValue?, options?, validations?, derived?}]}. Rules serialize as
// tagged objects such as {"type": "minLength", "value": 3}.
package schema
