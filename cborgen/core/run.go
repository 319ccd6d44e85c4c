// Package core implements cborgen's code generation: given a Go source
// file, it emits a companion file with MarshalCBOR/UnmarshalCBOR methods
// for each struct type with at least one exported field, specializing the scalar fields that
// dominate wire size and falling back to the reflection-based default
// codec (runtime.AppendValue/DecodeValue) for anything it doesn't know a
// direct wire shape for.
package core

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"

	tmplfs "github.com/wireproto/cbor-go/cborgen/templates"
)

const runtimeAlias = "cbor"

var templateFuncs = template.FuncMap{"rt": runtimeName}

func runtimeName(name string) string { return runtimeAlias + "." + name }

// Options configures how generation runs.
type Options struct {
	Verbose bool
	// Structs, if non-empty, restricts generation to the named struct
	// types. Names must match Go type names exactly (no package qualifier).
	Structs []string
}

// Run generates CBOR code for a single Go source file, writing the result
// to outputPath.
func Run(inputPath, outputPath string, opts Options) error {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, inputPath, nil, parser.ParseComments)
	if err != nil {
		return err
	}
	return generateStructCode(file, outputPath, file.Name.Name, opts)
}

type fieldSpec struct {
	GoName     string
	CBORName   string
	OmitEmpty  bool
	EncodeStmt string // statement appending this field's value to b; may assign err
	DecodeCase string // one switch case body for this field's key
	Fallback   bool   // true if EncodeStmt/DecodeCase use the generic AppendValue/DecodeValue path
	Ignore     bool
}

type structSpec struct {
	Name    string
	Fields  []fieldSpec
	HasOmit bool
}

// generateStructCode finds struct types in file and generates a
// MarshalCBOR/UnmarshalCBOR pair for each, honoring cbor/json tags.
//
// cbor tag rules: a cbor tag wins if present; otherwise a json tag is
// used; otherwise the Go field name is used verbatim. "-" skips a field.
func generateStructCode(file *ast.File, outputPath, pkg string, opts Options) error {
	var structs []structSpec

	var allowed map[string]struct{}
	if len(opts.Structs) > 0 {
		allowed = make(map[string]struct{}, len(opts.Structs))
		for _, name := range opts.Structs {
			if name = strings.TrimSpace(name); name != "" {
				allowed[name] = struct{}{}
			}
		}
	}

	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				continue
			}
			if len(allowed) > 0 {
				if _, ok := allowed[ts.Name.Name]; !ok {
					continue
				}
			}

			ss := structSpec{Name: ts.Name.Name}
			for _, field := range st.Fields.List {
				if len(field.Names) == 0 || !ast.IsExported(field.Names[0].Name) {
					continue
				}
				name := field.Names[0].Name
				fs := resolveFieldSpec(name, field.Tag)
				if fs.Ignore {
					continue
				}
				fs.EncodeStmt = encodeStmtForField(fs.GoName, fs.CBORName, field.Type)
				fs.DecodeCase = decodeCaseForField(fs.GoName, field.Type)
				fs.Fallback = isFallbackType(field.Type)
				if fs.OmitEmpty {
					ss.HasOmit = true
				}
				ss.Fields = append(ss.Fields, fs)
			}
			if len(ss.Fields) > 0 {
				structs = append(structs, ss)
			}
		}
	}

	if len(structs) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	data := struct {
		Package string
		Structs []structSpec
	}{Package: pkg, Structs: structs}

	var buf bytes.Buffer
	if err := marshalTemplate.ExecuteTemplate(&buf, "marshal.go.tpl", data); err != nil {
		return err
	}

	src, err := imports.Process(outputPath, buf.Bytes(), nil)
	if err != nil {
		if formatted, ferr := format.Source(buf.Bytes()); ferr == nil {
			src = formatted
		} else {
			src = buf.Bytes()
		}
	}
	_, err = out.Write(src)
	return err
}

func resolveFieldSpec(goName string, tag *ast.BasicLit) fieldSpec {
	fs := fieldSpec{GoName: goName, CBORName: goName}
	if tag == nil {
		return fs
	}
	raw := tag.Value
	if len(raw) >= 2 && raw[0] == '`' && raw[len(raw)-1] == '`' {
		raw = raw[1 : len(raw)-1]
	}
	st := reflect.StructTag(raw)
	if v := st.Get("cbor"); v != "" {
		return applyTagValue(fs, v)
	}
	if v := st.Get("json"); v != "" {
		return applyTagValue(fs, v)
	}
	return fs
}

func applyTagValue(fs fieldSpec, v string) fieldSpec {
	if v == "-" {
		fs.Ignore = true
		return fs
	}
	parts := strings.Split(v, ",")
	name := parts[0]
	for _, p := range parts[1:] {
		if p == "omitempty" {
			fs.OmitEmpty = true
		}
	}
	if name != "" {
		fs.CBORName = name
	}
	return fs
}

// scalarAppend/scalarRead map a primitive Go identifier to the runtime
// AppendXxx/ReadXxxBytes primitive pair that handles it directly.
var scalarAppend = map[string]string{
	"string": "AppendString", "bool": "AppendBool",
	"int": "AppendInt", "int8": "AppendInt8", "int16": "AppendInt16", "int32": "AppendInt32", "int64": "AppendInt64", "rune": "AppendInt32",
	"uint": "AppendUint", "uint8": "AppendUint8", "uint16": "AppendUint16", "uint32": "AppendUint32", "uint64": "AppendUint64", "byte": "AppendUint8",
	"float32": "AppendFloat32", "float64": "AppendFloat64",
}

var scalarRead = map[string]string{
	"string": "ReadStringBytes", "bool": "ReadBoolBytes",
	"int": "ReadIntBytes", "int8": "ReadInt8Bytes", "int16": "ReadInt16Bytes", "int32": "ReadInt32Bytes", "int64": "ReadInt64Bytes", "rune": "ReadInt32Bytes",
	"uint": "ReadUintBytes", "uint8": "ReadUint8Bytes", "uint16": "ReadUint16Bytes", "uint32": "ReadUint32Bytes", "uint64": "ReadUint64Bytes", "byte": "ReadUint8Bytes",
	"float32": "ReadFloat32Bytes", "float64": "ReadFloat64Bytes",
}

func isByteSlice(t ast.Expr) bool {
	at, ok := t.(*ast.ArrayType)
	if !ok || at.Len != nil {
		return false
	}
	ident, ok := at.Elt.(*ast.Ident)
	return ok && (ident.Name == "byte" || ident.Name == "uint8")
}

func isTimeSelector(t ast.Expr, sel string) bool {
	se, ok := t.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	pkg, ok := se.X.(*ast.Ident)
	return ok && pkg.Name == "time" && se.Sel.Name == sel
}

// isFallbackType reports whether typ has no specialized encode/decode
// case and must go through the generic reflection codec.
func isFallbackType(typ ast.Expr) bool {
	switch t := typ.(type) {
	case *ast.Ident:
		_, ok := scalarAppend[t.Name]
		return !ok
	case *ast.ArrayType:
		return !isByteSlice(typ)
	case *ast.SelectorExpr:
		return !isTimeSelector(typ, "Time") && !isTimeSelector(typ, "Duration")
	default:
		return true
	}
}

func encodeStmtForField(goName, cborName string, typ ast.Expr) string {
	field := "x." + goName
	rt := runtimeName

	if isByteSlice(typ) {
		return fmt.Sprintf("b = %s(b, %s)", rt("AppendBytes"), field)
	}
	if isTimeSelector(typ, "Time") {
		return fmt.Sprintf("b = %s(b, %s)", rt("AppendTime"), field)
	}
	if isTimeSelector(typ, "Duration") {
		return fmt.Sprintf("b = %s(b, %s)", rt("AppendDuration"), field)
	}
	if ident, ok := typ.(*ast.Ident); ok {
		if fn, ok := scalarAppend[ident.Name]; ok {
			return fmt.Sprintf("b = %s(b, %s)", rt(fn), field)
		}
	}
	return fmt.Sprintf("if b, err = %s(b, %s); err != nil { return nil, err }", rt("AppendValue"), field)
}

func decodeCaseForField(goName string, typ ast.Expr) string {
	field := "x." + goName
	rt := runtimeName

	if isByteSlice(typ) {
		return fmt.Sprintf(`var v []byte
			if v, b, err = %s(b, nil); err != nil { return nil, err }
			%s = append([]byte(nil), v...)`, rt("ReadBytesBytes"), field)
	}
	if isTimeSelector(typ, "Time") {
		return fmt.Sprintf("if %s, b, err = %s(b); err != nil { return nil, err }", field, rt("ReadTimeBytes"))
	}
	if isTimeSelector(typ, "Duration") {
		return fmt.Sprintf("if %s, b, err = %s(b); err != nil { return nil, err }", field, rt("ReadDurationBytes"))
	}
	if ident, ok := typ.(*ast.Ident); ok {
		if fn, ok := scalarRead[ident.Name]; ok {
			return fmt.Sprintf("if %s, b, err = %s(b); err != nil { return nil, err }", field, rt(fn))
		}
	}
	return fmt.Sprintf("if b, err = %s(b, &%s); err != nil { return nil, err }", rt("DecodeValue"), field)
}

var marshalTemplate = template.Must(template.New("marshal.go.tpl").Funcs(templateFuncs).ParseFS(tmplfs.FS, "marshal.go.tpl"))
