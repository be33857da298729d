package syntax

// Redirection operators.
const (
	OpTruncate = ">"
	OpAppend   = ">>"
)

// Redirect is a parsed output redirection. Target is empty when the
// operator was the last token on the line; that is only reported once
// something tries to write through it.
type Redirect struct {
	Op     string
	Target string
}

// Append reports whether output should be added to the end of the target.
func (r *Redirect) Append() bool {
	return r != nil && r.Op == OpAppend
}

// HasTarget reports whether a target path was supplied.
func (r *Redirect) HasTarget() bool {
	return r != nil && r.Target != ""
}

// SplitRedirection separates the command tokens from the first `>` or `>>`
// operator and the token following it. Anything after the target is
// dropped; only one redirection is recognised per line.
func SplitRedirection(tokens []string) ([]string, *Redirect) {
	for i, tok := range tokens {
		if tok != OpTruncate && tok != OpAppend {
			continue
		}
		redir := &Redirect{Op: tok}
		if i+1 < len(tokens) {
			redir.Target = tokens[i+1]
		}
		return tokens[:i:i], redir
	}
	return tokens, nil
}
