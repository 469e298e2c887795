package llm

// analysisSchema describes the reply expected for Analyze. Every field is
// optional; missing lists decode as empty.
const analysisSchema = `{
  "type": "object",
  "properties": {
    "ambiguities":          {"type": "array", "items": {"type": "string"}},
    "missing_context":      {"type": "array", "items": {"type": "string"}},
    "injection_risks":      {"type": "array", "items": {"type": "string"}},
    "best_practice_issues": {"type": "array", "items": {"type": "string"}},
    "suggested_revision":   {"type": ["string", "null"]},
    "revision_explanation": {"type": ["string", "null"]}
  }
}`

// suggestionSchema describes the reply expected for Suggest.
const suggestionSchema = `{
  "type": "object",
  "required": ["suggested"],
  "properties": {
    "suggested":   {"type": "string"},
    "explanation": {"type": "string"},
    "changes": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "original":    {"type": "string"},
          "replacement": {"type": "string"},
          "reason":      {"type": "string"}
        }
      }
    }
  }
}`
