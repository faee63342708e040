package minitpl

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"

	"github.com/minihttp/minitpl/pkg/minitpl/scan"
)

const validationParserVersion = "v1"

var incompleteDirectivePattern = regexp.MustCompile(`\$(?:\{\}|\{|if\(|foreach\()`)

// IssueSeverity indicates validation issue severity.
type IssueSeverity string

const (
	IssueSeverityError   IssueSeverity = "error"
	IssueSeverityWarning IssueSeverity = "warning"
)

// IssueCode classifies validation issues.
type IssueCode string

const (
	IssueCodeSyntaxError          IssueCode = "SYNTAX_ERROR"
	IssueCodeControlBlockMismatch IssueCode = "CONTROL_BLOCK_MISMATCH"
	IssueCodeIncompleteDirective  IssueCode = "INCOMPLETE_DIRECTIVE"
	IssueCodeEmptyPath            IssueCode = "EMPTY_PATH"
)

// RefKind identifies extracted reference categories.
type RefKind string

const (
	RefKindVariable RefKind = "variable"
	RefKindControl  RefKind = "control"
	RefKindLoopVar  RefKind = "loop-variable"
)

// ValidateInput controls syntax validation behavior.
type ValidateInput struct {
	Source    string `json:"-"`
	Name      string `json:"name,omitempty"`
	MaxIssues int    `json:"maxIssues,omitempty"` // 0 = unlimited
}

// ExtractReferencesInput controls reference extraction behavior.
type ExtractReferencesInput struct {
	Source string `json:"-"`
	Name   string `json:"name,omitempty"`
}

// Location identifies a position in template source.
type Location struct {
	Offset       int `json:"offset"`
	Line         int `json:"line"`
	Column       int `json:"column"`
	TokenOrdinal int `json:"tokenOrdinal"`
}

// TemplateRef references one directive-derived item.
type TemplateRef struct {
	Raw        string   `json:"raw"`
	Kind       RefKind  `json:"kind"`
	Expression string   `json:"expression,omitempty"`
	Location   Location `json:"location"`
}

// ValidationIssue is a single problem found in a template.
type ValidationIssue struct {
	ID       string        `json:"id"`
	Severity IssueSeverity `json:"severity"`
	Code     IssueCode     `json:"code"`
	Message  string        `json:"message"`
	Token    TemplateRef   `json:"token"`
}

// ValidationSummary contains validation counters.
type ValidationSummary struct {
	CheckedTokens      int `json:"checkedTokens"`
	ErrorCount         int `json:"errorCount"`
	WarningCount       int `json:"warningCount"`
	ReturnedIssueCount int `json:"returnedIssueCount"`
}

// Metadata identifies the validated source and parser version.
type Metadata struct {
	Name          string `json:"name,omitempty"`
	SourceHash    string `json:"sourceHash"`
	ParserVersion string `json:"parserVersion"`
}

// ValidateResult contains syntax validation output.
type ValidateResult struct {
	Valid           bool              `json:"valid"`
	Summary         ValidationSummary `json:"summary"`
	Issues          []ValidationIssue `json:"issues"`
	IssuesTruncated bool              `json:"issuesTruncated"`
	Metadata        Metadata          `json:"metadata"`
}

// ExtractReferencesResult contains references extracted from template directives.
type ExtractReferencesResult struct {
	References []TemplateRef `json:"references"`
	Metadata   Metadata      `json:"metadata"`
}

// Validate checks directive syntax and block balance. A template is valid
// when it has no error-severity issues; warnings flag text that looks like
// a directive but renders literally.
func Validate(input ValidateInput) (ValidateResult, error) {
	if input.MaxIssues < 0 {
		return ValidateResult{}, fmt.Errorf("maxIssues must be >= 0")
	}

	tokens := scan.Tokenize(input.Source)
	issues := validateTokens(input.Source, tokens)
	sortValidationIssues(issues)

	errorCount := 0
	for i := range issues {
		issues[i].ID = fmt.Sprintf("iss_%03d", i+1)
		if issues[i].Severity == IssueSeverityError {
			errorCount++
		}
	}

	returnedIssues := issues
	issuesTruncated := false
	if input.MaxIssues > 0 && len(issues) > input.MaxIssues {
		returnedIssues = issues[:input.MaxIssues]
		issuesTruncated = true
	}

	return ValidateResult{
		Valid: errorCount == 0,
		Summary: ValidationSummary{
			CheckedTokens:      len(tokens),
			ErrorCount:         errorCount,
			WarningCount:       len(issues) - errorCount,
			ReturnedIssueCount: len(returnedIssues),
		},
		Issues:          returnedIssues,
		IssuesTruncated: issuesTruncated,
		Metadata:        newMetadata(input.Name, input.Source),
	}, nil
}

// ExtractReferences lists the paths and control headers a template uses,
// in source order.
func ExtractReferences(input ExtractReferencesInput) (ExtractReferencesResult, error) {
	tokens := scan.Tokenize(input.Source)
	return ExtractReferencesResult{
		References: extractReferences(input.Source, tokens),
		Metadata:   newMetadata(input.Name, input.Source),
	}, nil
}

type validationFrame struct {
	token   scan.Token
	ordinal int
	sawElse bool
}

func validateTokens(src string, tokens []scan.Token) []ValidationIssue {
	issues := make([]ValidationIssue, 0)
	stack := make([]validationFrame, 0)

	appendIssue := func(severity IssueSeverity, code IssueCode, message string, tok scan.Token, ordinal int, offset int, raw string) {
		ref := TemplateRef{
			Raw:      raw,
			Kind:     refKindOf(tok),
			Location: locationAt(src, offset, ordinal),
		}
		if tok.Type != scan.TokenText {
			ref.Expression = tok.Value
		}
		issues = append(issues, ValidationIssue{
			Severity: severity,
			Code:     code,
			Message:  message,
			Token:    ref,
		})
	}
	appendError := func(code IssueCode, message string, tok scan.Token, ordinal int) {
		appendIssue(IssueSeverityError, code, message, tok, ordinal, tok.Pos, tok.Raw)
	}

	// closeBlock pops up to the nearest frame of the given kind, reporting
	// frames left open above it.
	closeBlock := func(tok scan.Token, ordinal int, opener scan.TokenType) {
		for i := len(stack) - 1; i >= 0; i-- {
			if stack[i].token.Type != opener {
				continue
			}
			for _, open := range stack[i+1:] {
				appendError(IssueCodeControlBlockMismatch,
					fmt.Sprintf("%s closes %q before its nested block is closed", tok.Raw, open.token.Raw),
					open.token, open.ordinal)
			}
			stack = stack[:i]
			return
		}
		appendError(IssueCodeControlBlockMismatch,
			fmt.Sprintf("%s has no matching opening block", tok.Raw), tok, ordinal)
	}

	for ordinal, tok := range tokens {
		switch tok.Type {
		case scan.TokenText:
			for _, m := range incompleteDirectivePattern.FindAllStringIndex(tok.Raw, -1) {
				raw := tok.Raw[m[0]:m[1]]
				message := fmt.Sprintf("%s is not a complete directive and renders as text", raw)
				if raw == "${}" {
					message = "${} has an empty path and renders as text"
				}
				appendIssue(IssueSeverityWarning, IssueCodeIncompleteDirective, message, tok, ordinal, tok.Pos+m[0], raw)
			}
		case scan.TokenVariable:
			if tok.Value == "" {
				appendIssue(IssueSeverityWarning, IssueCodeEmptyPath, "blank path renders the current data node", tok, ordinal, tok.Pos, tok.Raw)
			}
		case scan.TokenIf:
			if tok.Value == "" {
				appendIssue(IssueSeverityWarning, IssueCodeEmptyPath, "blank condition tests the current data node", tok, ordinal, tok.Pos, tok.Raw)
			}
			stack = append(stack, validationFrame{token: tok, ordinal: ordinal})
		case scan.TokenForeach:
			if _, _, err := scan.ParseForeachHeader(tok.Value); err != nil {
				appendError(IssueCodeSyntaxError, err.Error(), tok, ordinal)
			}
			stack = append(stack, validationFrame{token: tok, ordinal: ordinal})
		case scan.TokenElse:
			if len(stack) == 0 {
				appendError(IssueCodeControlBlockMismatch, "$else has no matching $if", tok, ordinal)
				continue
			}
			top := &stack[len(stack)-1]
			if top.token.Type != scan.TokenIf {
				appendError(IssueCodeControlBlockMismatch, "$else only matches $if", tok, ordinal)
			} else if top.sawElse {
				appendError(IssueCodeControlBlockMismatch, "$else can only appear once in an $if block", tok, ordinal)
			} else {
				top.sawElse = true
			}
		case scan.TokenEndIf:
			closeBlock(tok, ordinal, scan.TokenIf)
		case scan.TokenEndFor:
			closeBlock(tok, ordinal, scan.TokenForeach)
		}
	}

	for _, open := range stack {
		closer := "$endif"
		if open.token.Type == scan.TokenForeach {
			closer = "$endfor"
		}
		appendError(IssueCodeControlBlockMismatch,
			fmt.Sprintf("missing %s for opening block %q", closer, open.token.Raw),
			open.token, open.ordinal)
	}

	return issues
}

func extractReferences(src string, tokens []scan.Token) []TemplateRef {
	references := make([]TemplateRef, 0)

	appendRef := func(tok scan.Token, ordinal int, kind RefKind, expression string) {
		references = append(references, TemplateRef{
			Raw:        tok.Raw,
			Kind:       kind,
			Expression: expression,
			Location:   locationAt(src, tok.Pos, ordinal),
		})
	}

	for ordinal, tok := range tokens {
		switch tok.Type {
		case scan.TokenVariable:
			appendRef(tok, ordinal, RefKindVariable, tok.Value)
		case scan.TokenIf:
			appendRef(tok, ordinal, RefKindControl, tok.Value)
			appendRef(tok, ordinal, RefKindVariable, tok.Value)
		case scan.TokenForeach:
			appendRef(tok, ordinal, RefKindControl, tok.Value)
			name, path, err := scan.ParseForeachHeader(tok.Value)
			if err != nil {
				continue
			}
			appendRef(tok, ordinal, RefKindLoopVar, name)
			appendRef(tok, ordinal, RefKindVariable, path)
		}
	}

	return references
}

func refKindOf(tok scan.Token) RefKind {
	if tok.Type == scan.TokenVariable {
		return RefKindVariable
	}
	return RefKindControl
}

func locationAt(src string, offset, ordinal int) Location {
	line, column := lineColumn(src, offset)
	return Location{
		Offset:       offset,
		Line:         line,
		Column:       column,
		TokenOrdinal: ordinal,
	}
}

func newMetadata(name, src string) Metadata {
	sum := sha256.Sum256([]byte(src))
	return Metadata{
		Name:          name,
		SourceHash:    "sha256:" + hex.EncodeToString(sum[:]),
		ParserVersion: validationParserVersion,
	}
}

func sortValidationIssues(issues []ValidationIssue) {
	sort.SliceStable(issues, func(i, j int) bool {
		left := issues[i].Token.Location
		right := issues[j].Token.Location

		if left.Offset != right.Offset {
			return left.Offset < right.Offset
		}
		if issues[i].Code != issues[j].Code {
			return issues[i].Code < issues[j].Code
		}
		return issues[i].Message < issues[j].Message
	})
}

// UsedPaths returns the distinct paths read by variables, conditions and
// loop collections, sorted.
func (r ExtractReferencesResult) UsedPaths() []string {
	seen := make(map[string]bool)
	paths := make([]string, 0)
	for _, ref := range r.References {
		if ref.Kind != RefKindVariable || seen[ref.Expression] {
			continue
		}
		seen[ref.Expression] = true
		paths = append(paths, ref.Expression)
	}
	sort.Strings(paths)
	return paths
}
