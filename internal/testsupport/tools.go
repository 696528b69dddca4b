package testsupport

// Stub Graphviz bodies.
const (
	// EchoDot wraps the DOT source it reads on stdin in an svg element.
	EchoDot = `printf '<?xml version="1.0"?>\n<svg xmlns="http://www.w3.org/2000/svg">\n'
cat
printf '</svg>\n'
`
	// BrokenDot rejects its input like a syntax error would.
	BrokenDot = `cat > /dev/null
echo "Error: <stdin>: syntax error in line 1" >&2
exit 1
`
)

// WithDotStub installs body as the dot stub and points the config at it.
func WithDotStub(body string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Graph.DotBinary = writeStub(b.t, b.baseDir, "dot", body)
	}
}
