package soft

import (
	"fmt"
	"strconv"
	"strings"

	"spincube/gfx"
)

// The software driver does not execute GLSL. It scans the source for the top-level
// declarations and the two assignments it can emulate:
//
//	gl_Position = m0 * m1 * ... * vec4(attr, w);
//	<out> = vec4(r, g, b, a);
//
// Anything else inside main is accepted and ignored.

type tokKind uint8

const (
	tokIdent tokKind = iota + 1
	tokNumber
	tokPunct
)

type token struct {
	kind tokKind
	text string
	line int
	col  int
}

type declKind uint8

const (
	declIn declKind = iota + 1
	declOut
	declUniform
)

type decl struct {
	kind     declKind
	typ      string
	name     string
	location int
	line     int
}

type shaderInfo struct {
	decls   []decl
	hasMain bool

	// Vertex stage: matrix uniform names left to right, then the attribute.
	position     []string
	positionAttr string
	positionW    float32
	positionLine int

	// Fragment stage.
	color    [4]float32
	hasColor bool
}

func (si *shaderInfo) find(kind declKind, name string) (decl, bool) {
	for _, d := range si.decls {
		if d.kind == kind && d.name == name {
			return d, true
		}
	}
	return decl{}, false
}

type diag struct {
	line, col int
	msg       string
}

func (d diag) String() string {
	return fmt.Sprintf("0:%d(%d): error: %s", d.line, d.col, d.msg)
}

func formatDiags(ds []diag) string {
	var b strings.Builder
	for _, d := range ds {
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func tokenize(src string) ([]token, []diag) {
	var toks []token
	var diags []diag
	line, col := 1, 1
	i := 0
	advance := func() {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
		i++
	}
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			advance()
		case c == '#':
			for i < len(src) && src[i] != '\n' {
				advance()
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				advance()
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			startLine, startCol := line, col
			advance()
			advance()
			closed := false
			for i < len(src) {
				if src[i] == '*' && i+1 < len(src) && src[i+1] == '/' {
					advance()
					advance()
					closed = true
					break
				}
				advance()
			}
			if !closed {
				diags = append(diags, diag{startLine, startCol, "unterminated comment"})
			}
		case isIdentStart(c):
			t := token{kind: tokIdent, line: line, col: col}
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				advance()
			}
			t.text = src[start:i]
			toks = append(toks, t)
		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			t := token{kind: tokNumber, line: line, col: col}
			start := i
			for i < len(src) && (isDigit(src[i]) || src[i] == '.' || src[i] == 'e' || src[i] == 'E' ||
				((src[i] == '-' || src[i] == '+') && (src[i-1] == 'e' || src[i-1] == 'E'))) {
				advance()
			}
			if i < len(src) && (src[i] == 'f' || src[i] == 'F' || src[i] == 'u' || src[i] == 'U') {
				advance()
			}
			t.text = src[start:i]
			toks = append(toks, t)
		default:
			toks = append(toks, token{kind: tokPunct, text: string(c), line: line, col: col})
			advance()
		}
	}
	return toks, diags
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

var qualifiers = map[string]bool{
	"const": true, "flat": true, "smooth": true, "noperspective": true, "centroid": true,
	"highp": true, "mediump": true, "lowp": true, "invariant": true,
}

// parseGLSL scans src as a shader of the given stage.
func parseGLSL(stage gfx.ShaderType, src string) (*shaderInfo, []diag) {
	toks, diags := tokenize(src)
	si := &shaderInfo{}
	if len(toks) == 0 {
		return si, append(diags, diag{1, 1, "syntax error, unexpected end of file"})
	}

	depth := 0
	inMain := false
	var stmt []token
	for _, t := range toks {
		switch {
		case t.kind == tokPunct && t.text == "{":
			if depth == 0 && isMainHeader(stmt) {
				si.hasMain = true
				inMain = true
			}
			stmt = stmt[:0]
			depth++
		case t.kind == tokPunct && t.text == "}":
			if len(stmt) > 0 {
				diags = append(diags, unexpected(t))
				stmt = stmt[:0]
			}
			depth--
			if depth < 0 {
				diags = append(diags, unexpected(t))
				depth = 0
			}
			if depth == 0 {
				inMain = false
			}
		case t.kind == tokPunct && t.text == ";":
			if depth == 0 {
				if d := si.topLevel(stage, stmt); d != nil {
					diags = append(diags, *d)
				}
			} else if inMain {
				if d := si.statement(stage, stmt); d != nil {
					diags = append(diags, *d)
				}
			}
			stmt = stmt[:0]
		default:
			stmt = append(stmt, t)
		}
	}
	last := toks[len(toks)-1]
	if depth > 0 || len(stmt) > 0 {
		diags = append(diags, diag{last.line, last.col + len(last.text), "syntax error, unexpected end of file"})
	}
	return si, diags
}

func unexpected(t token) diag {
	return diag{t.line, t.col, fmt.Sprintf("syntax error, unexpected '%s'", t.text)}
}

func isMainHeader(stmt []token) bool {
	return len(stmt) >= 4 && stmt[0].text == "void" && stmt[1].text == "main" && stmt[2].text == "("
}

// topLevel handles a declaration outside any function body.
func (si *shaderInfo) topLevel(stage gfx.ShaderType, stmt []token) *diag {
	if len(stmt) == 0 {
		return nil
	}
	location := -1
	if stmt[0].text == "layout" {
		end := -1
		for i, t := range stmt {
			if t.text == "=" && i+1 < len(stmt) && stmt[i+1].kind == tokNumber {
				if n, err := strconv.Atoi(stmt[i+1].text); err == nil {
					location = n
				}
			}
			if t.text == ")" {
				end = i
				break
			}
		}
		if end < 0 {
			return &diag{stmt[0].line, stmt[0].col, "syntax error, unterminated layout qualifier"}
		}
		stmt = stmt[end+1:]
	}
	if len(stmt) == 0 {
		return nil
	}
	if stmt[0].text == "precision" {
		return nil
	}

	var kind declKind
	switch stmt[0].text {
	case "in", "attribute":
		kind = declIn
	case "varying":
		kind = declOut
		if stage == gfx.FragmentShader {
			kind = declIn
		}
	case "out":
		kind = declOut
	case "uniform":
		kind = declUniform
	default:
		if stmt[0].kind == tokIdent {
			// Globals and prototypes take no part in the emulated stages.
			return nil
		}
		return &diag{stmt[0].line, stmt[0].col, fmt.Sprintf("syntax error, unexpected '%s'", stmt[0].text)}
	}
	rest := stmt[1:]
	for len(rest) > 0 && qualifiers[rest[0].text] {
		rest = rest[1:]
	}
	if len(rest) < 2 || rest[0].kind != tokIdent || rest[1].kind != tokIdent {
		at := stmt[len(stmt)-1]
		return &diag{at.line, at.col, "syntax error, expected type and name"}
	}
	si.decls = append(si.decls, decl{
		kind:     kind,
		typ:      rest[0].text,
		name:     rest[1].text,
		location: location,
		line:     rest[1].line,
	})
	return nil
}

// statement handles one statement inside main.
func (si *shaderInfo) statement(stage gfx.ShaderType, stmt []token) *diag {
	if len(stmt) < 3 || stmt[1].text != "=" {
		return nil
	}
	lhs, rhs := stmt[0], stmt[2:]
	switch stage {
	case gfx.VertexShader:
		if lhs.text != "gl_Position" {
			return nil
		}
		return si.parsePosition(lhs, rhs)
	case gfx.FragmentShader:
		if lhs.text != "gl_FragColor" {
			if _, ok := si.find(declOut, lhs.text); !ok {
				return nil
			}
		}
		if c, ok := parseVec4Literal(rhs); ok {
			si.color = c
			si.hasColor = true
		}
	}
	return nil
}

func (si *shaderInfo) parsePosition(lhs token, rhs []token) *diag {
	si.position = si.position[:0]
	si.positionLine = lhs.line
	for len(rhs) > 0 {
		t := rhs[0]
		if t.kind != tokIdent {
			return &diag{t.line, t.col, fmt.Sprintf("syntax error, unexpected '%s'", t.text)}
		}
		if t.text == "vec4" {
			attr, w, n, ok := parseVec4Attr(rhs)
			if !ok {
				return &diag{t.line, t.col, "unsupported vec4 constructor in gl_Position"}
			}
			si.positionAttr = attr
			si.positionW = w
			rhs = rhs[n:]
		} else {
			si.position = append(si.position, t.text)
			rhs = rhs[1:]
		}
		if len(rhs) == 0 {
			break
		}
		if rhs[0].text != "*" {
			return &diag{rhs[0].line, rhs[0].col, fmt.Sprintf("syntax error, unexpected '%s'", rhs[0].text)}
		}
		rhs = rhs[1:]
	}
	if si.positionAttr == "" && len(si.position) > 0 {
		// gl_Position = m * attr; where attr is already a vec4.
		si.positionAttr = si.position[len(si.position)-1]
		si.position = si.position[:len(si.position)-1]
		si.positionW = 1
	}
	return nil
}

// parseVec4Attr matches vec4 ( ident , number ) and returns the number of tokens used.
func parseVec4Attr(t []token) (attr string, w float32, n int, ok bool) {
	if len(t) < 6 || t[1].text != "(" || t[2].kind != tokIdent || t[3].text != "," || t[4].kind != tokNumber || t[5].text != ")" {
		return "", 0, 0, false
	}
	v, err := parseNumber(t[4].text)
	if err != nil {
		return "", 0, 0, false
	}
	return t[2].text, v, 6, true
}

func parseVec4Literal(t []token) ([4]float32, bool) {
	var out [4]float32
	if len(t) != 10 || t[0].text != "vec4" || t[1].text != "(" || t[9].text != ")" {
		return out, false
	}
	for i := 0; i < 4; i++ {
		num := t[2+i*2]
		if num.kind != tokNumber {
			return out, false
		}
		if i < 3 && t[3+i*2].text != "," {
			return out, false
		}
		v, err := parseNumber(num.text)
		if err != nil {
			return out, false
		}
		out[i] = v
	}
	return out, true
}

func parseNumber(s string) (float32, error) {
	s = strings.TrimRight(s, "fFuU")
	v, err := strconv.ParseFloat(s, 32)
	return float32(v), err
}
