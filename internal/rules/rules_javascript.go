package rules

import (
	"regexp"

	"github.com/codewithboateng/codesafe/internal/model"
)

var passwordAssignment = regexp.MustCompile(`(?i)password.*=.*['"][^'"]*['"]`)

// Catalog files are named by full language name: a _js.go suffix is a
// GOOS build constraint and would drop the file from normal builds.
var javascriptRules = []Rule{
	{
		ID:          "no-eval",
		Severity:    model.SeverityHigh,
		Detect:      Contains("eval("),
		Message:     "Use of eval() can be dangerous and lead to code injection vulnerabilities",
		Improvement: "Replace eval() with safer alternatives such as Function constructor or JSON.parse() for JSON data. Consider restructuring your code to avoid dynamic code execution.",
	},
	{
		ID:          "no-dangerous-html",
		Severity:    model.SeverityHigh,
		Detect:      Contains("dangerouslySetInnerHTML"),
		Message:     "dangerouslySetInnerHTML can lead to XSS vulnerabilities",
		Improvement: "Use safer alternatives like React components and props. If you must use HTML, ensure all user input is properly sanitized using a library like DOMPurify.",
	},
	{
		ID:          "no-inner-html",
		Severity:    model.SeverityMedium,
		Detect:      Contains("innerHTML"),
		Message:     "Use of innerHTML can lead to XSS vulnerabilities",
		Improvement: "Use safer DOM manipulation methods like textContent or createElement() and appendChild(). For frameworks like React, use their built-in components and props system.",
	},
	{
		ID:          "no-hardcoded-secrets",
		Severity:    model.SeverityMedium,
		Detect:      Regex(passwordAssignment),
		Message:     "Hardcoded password detected",
		Improvement: "Use environment variables or a secure vault service to store sensitive information. Never hardcode secrets in your source code.",
	},
	{
		ID:          "no-console",
		Severity:    model.SeverityLow,
		Detect:      EachLine("console.log"),
		Message:     "Console statements should be removed in production code",
		Improvement: "Remove console.log statements or replace with proper logging that can be disabled in production. Consider using a logging library that supports different log levels.",
	},
	{
		ID:          "no-todo-comments",
		Severity:    model.SeverityLow,
		Detect:      AnyOf("TODO", "FIXME"),
		Message:     "TODO or FIXME comment found",
		Improvement: "Address the TODO/FIXME comments before deploying to production. If it's a known limitation, document it properly and create an issue in your project management system.",
	},
}
