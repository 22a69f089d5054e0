package rules

import "github.com/codewithboateng/codesafe/internal/model"

var pythonRules = []Rule{
	{
		ID:          "no-exec",
		Severity:    model.SeverityHigh,
		Detect:      Contains("exec("),
		Message:     "Use of exec() can lead to code injection vulnerabilities",
		Improvement: "Avoid using exec() entirely. Restructure your code to use more specific functions or modules that perform the required functionality without executing arbitrary code.",
	},
	{
		ID:          "no-unsafe-deserialization",
		Severity:    model.SeverityHigh,
		Detect:      Contains("pickle.loads"),
		Message:     "Unsafe deserialization using pickle can lead to code execution",
		Improvement: "Use safer serialization alternatives like JSON, YAML, or MessagePack. If pickle is necessary, only unpickle data from trusted sources and consider using safer modules like marshmallow.",
	},
	{
		ID:          "validate-input",
		Severity:    model.SeverityMedium,
		Detect:      EachLine("input("),
		Message:     "Input should be type-checked and sanitized",
		Improvement: "Always validate and sanitize user input. Use type conversion functions like int() or float() with try/except blocks, or use input validation libraries like Pydantic.",
	},
	{
		ID:          "no-shell-true",
		Severity:    model.SeverityMedium,
		Detect:      Contains("shell=True"),
		Message:     "Using shell=True with subprocess can be dangerous",
		Improvement: "Avoid using shell=True with subprocess. Instead, pass the command as a list of arguments and set shell=False (the default). This prevents shell injection attacks.",
	},
}
