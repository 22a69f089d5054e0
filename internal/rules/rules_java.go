package rules

import "github.com/codewithboateng/codesafe/internal/model"

var javaRules = []Rule{
	{
		ID:          "no-runtime-exec",
		Severity:    model.SeverityHigh,
		Detect:      Contains("Runtime.getRuntime().exec("),
		Message:     "Using Runtime.exec() can be dangerous for command execution",
		Improvement: "Use ProcessBuilder instead, which has better security features. Always validate and sanitize any user input that goes into command execution.",
	},
	{
		ID:          "no-stacktrace-print",
		Severity:    model.SeverityMedium,
		Detect:      Contains("printStackTrace"),
		Message:     "printStackTrace exposes implementation details",
		Improvement: "Use a proper logging framework like SLF4J or Log4j. Pass exceptions to the logger rather than printing stack traces directly.",
	},
	{
		ID:          "use-logger",
		Severity:    model.SeverityLow,
		Detect:      EachLine("System.out.println"),
		Message:     "System.out.println should be replaced with proper logging",
		Improvement: "Replace System.out.println with a proper logging framework like SLF4J or Log4j. This provides better control over log levels and output destinations.",
	},
	{
		ID:          "use-optional",
		Severity:    model.SeverityLow,
		Detect:      AnyOf(" == null", " != null"),
		Message:     "Consider using Optional to handle null values",
		Improvement: "Use Java's Optional<T> type to represent optional values instead of null checks. This makes the API more explicit and helps prevent NullPointerExceptions.",
	},
}
