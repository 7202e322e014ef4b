package parser

import (
	"strings"

	"govetachun/kvsql/internal/dberrors"
	"govetachun/kvsql/internal/sqltypes"
)

// Parser holds the token cursor for one statement parse.
type Parser struct {
	lex    *lexer
	cur    token
	peeked bool
}

// New creates a parser over sql.
func New(sql string) *Parser {
	return &Parser{lex: newLexer(sql)}
}

// Parse parses sql as exactly one of the three accepted statement shapes. A
// trailing semicolon is accepted but not required.
func Parse(sql string) (Statement, error) {
	p := New(sql)
	stmt, err := p.parseStatement()
	if err != nil {
		return Statement{}, err
	}
	if _, err := p.tryPunct(";"); err != nil {
		return Statement{}, err
	}
	tok, err := p.peek()
	if err != nil {
		return Statement{}, err
	}
	if tok.kind != tokEOF {
		return Statement{}, newSyntaxError(tok.pos, "unexpected trailing input %q", tok.text)
	}
	return stmt, nil
}

func (p *Parser) peek() (token, error) {
	if !p.peeked {
		tok, err := p.lex.next()
		if err != nil {
			return token{}, err
		}
		p.cur = tok
		p.peeked = true
	}
	return p.cur, nil
}

func (p *Parser) advance() (token, error) {
	tok, err := p.peek()
	if err != nil {
		return token{}, err
	}
	p.peeked = false
	return tok, nil
}

func (p *Parser) keywordIs(tok token, kw string) bool {
	return tok.kind == tokKeyword && strings.EqualFold(tok.text, kw)
}

func (p *Parser) expectKeyword(kw string) error {
	tok, err := p.advance()
	if err != nil {
		return err
	}
	if !p.keywordIs(tok, kw) {
		return newSyntaxError(tok.pos, "expected %q, got %q", kw, tok.text)
	}
	return nil
}

func (p *Parser) tryKeyword(kw string) (bool, error) {
	tok, err := p.peek()
	if err != nil {
		return false, err
	}
	if p.keywordIs(tok, kw) {
		_, _ = p.advance()
		return true, nil
	}
	return false, nil
}

func (p *Parser) expectPunct(punct string) error {
	tok, err := p.advance()
	if err != nil {
		return err
	}
	if tok.kind != tokPunct || tok.text != punct {
		return newSyntaxError(tok.pos, "expected %q, got %q", punct, tok.text)
	}
	return nil
}

func (p *Parser) tryPunct(punct string) (bool, error) {
	tok, err := p.peek()
	if err != nil {
		return false, err
	}
	if tok.kind == tokPunct && tok.text == punct {
		_, _ = p.advance()
		return true, nil
	}
	return false, nil
}

func (p *Parser) expectIdent() (string, error) {
	tok, err := p.advance()
	if err != nil {
		return "", err
	}
	if tok.kind != tokIdent {
		return "", newSyntaxError(tok.pos, "expected identifier, got %q", tok.text)
	}
	return tok.text, nil
}

func (p *Parser) parseStatement() (Statement, error) {
	tok, err := p.peek()
	if err != nil {
		return Statement{}, err
	}
	switch {
	case p.keywordIs(tok, "create"):
		stmt, err := p.parseCreateTable()
		if err != nil {
			return Statement{}, err
		}
		return Statement{CreateTable: stmt}, nil
	case p.keywordIs(tok, "insert"):
		stmt, err := p.parseInsert()
		if err != nil {
			return Statement{}, err
		}
		return Statement{Insert: stmt}, nil
	case p.keywordIs(tok, "select"):
		stmt, err := p.parseSelect()
		if err != nil {
			return Statement{}, err
		}
		return Statement{Select: stmt}, nil
	default:
		return Statement{}, newSyntaxError(tok.pos, "expected CREATE, INSERT or SELECT, got %q", tok.text)
	}
}

// CREATE TABLE name ( col type [NULL|NOT NULL|DEFAULT expr] , ... ) ;
func (p *Parser) parseCreateTable() (*CreateTableStatement, error) {
	if err := p.expectKeyword("create"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("table"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}

	var columns []ColumnSpec
	for {
		col, err := p.parseColumnSpec()
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
		if ok, err := p.tryPunct(","); err != nil {
			return nil, err
		} else if !ok {
			break
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return &CreateTableStatement{Name: name, Columns: columns}, nil
}

func (p *Parser) parseColumnSpec() (ColumnSpec, error) {
	name, err := p.expectIdent()
	if err != nil {
		return ColumnSpec{}, err
	}
	dt, err := p.parseDataType()
	if err != nil {
		return ColumnSpec{}, err
	}
	spec := ColumnSpec{Name: name, DataType: dt}

	for {
		if ok, err := p.tryKeyword("not"); err != nil {
			return ColumnSpec{}, err
		} else if ok {
			if err := p.expectKeyword("null"); err != nil {
				return ColumnSpec{}, err
			}
			f := false
			spec.Nullable = &f
			continue
		}
		if ok, err := p.tryKeyword("null"); err != nil {
			return ColumnSpec{}, err
		} else if ok {
			t := true
			spec.Nullable = &t
			continue
		}
		if ok, err := p.tryKeyword("default"); err != nil {
			return ColumnSpec{}, err
		} else if ok {
			expr, err := p.parseExpression()
			if err != nil {
				return ColumnSpec{}, err
			}
			spec.Default = &expr
			continue
		}
		break
	}
	return spec, nil
}

func (p *Parser) parseDataType() (sqltypes.DataType, error) {
	tok, err := p.advance()
	if err != nil {
		return 0, err
	}
	if tok.kind != tokKeyword {
		return 0, newSyntaxError(tok.pos, "expected a data type, got %q", tok.text)
	}
	switch strings.ToLower(tok.text) {
	case "boolean", "bool":
		return sqltypes.Boolean, nil
	case "integer", "int":
		return sqltypes.Integer, nil
	case "float":
		return sqltypes.Float, nil
	case "string", "text", "varchar":
		return sqltypes.String, nil
	default:
		return 0, newSyntaxError(tok.pos, "unknown data type %q", tok.text)
	}
}

// INSERT INTO name [(col, ...)] VALUES (expr, ...), ... ;
func (p *Parser) parseInsert() (*InsertStatement, error) {
	if err := p.expectKeyword("insert"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("into"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	var columns []string
	if ok, err := p.tryPunct("("); err != nil {
		return nil, err
	} else if ok {
		for {
			col, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			columns = append(columns, col)
			if ok, err := p.tryPunct(","); err != nil {
				return nil, err
			} else if !ok {
				break
			}
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
	}

	if err := p.expectKeyword("values"); err != nil {
		return nil, err
	}

	var values [][]Expression
	for {
		if err := p.expectPunct("("); err != nil {
			return nil, err
		}
		var row []Expression
		for {
			expr, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			row = append(row, expr)
			if ok, err := p.tryPunct(","); err != nil {
				return nil, err
			} else if !ok {
				break
			}
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		values = append(values, row)
		if ok, err := p.tryPunct(","); err != nil {
			return nil, err
		} else if !ok {
			break
		}
	}

	return &InsertStatement{TableName: name, Columns: columns, Values: values}, nil
}

// SELECT * FROM name ;
func (p *Parser) parseSelect() (*SelectStatement, error) {
	if err := p.expectKeyword("select"); err != nil {
		return nil, err
	}
	if err := p.expectPunct("*"); err != nil {
		return nil, err
	}
	if err := p.expectKeyword("from"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	return &SelectStatement{TableName: name}, nil
}

// parseExpression parses exactly one constant: NULL, TRUE/FALSE, an integer
// or float literal, or a single-quoted string. The current grammar has no
// operators, so this is the entire expression grammar.
func (p *Parser) parseExpression() (Expression, error) {
	tok, err := p.advance()
	if err != nil {
		return Expression{}, err
	}
	switch {
	case p.keywordIs(tok, "null"):
		return Expression{Kind: ExprNull}, nil
	case p.keywordIs(tok, "true"):
		return Expression{Kind: ExprBoolean, Bool: true}, nil
	case p.keywordIs(tok, "false"):
		return Expression{Kind: ExprBoolean, Bool: false}, nil
	case tok.kind == tokInteger:
		n, err := parseInt(tok.text)
		if err != nil {
			return Expression{}, dberrors.Parsef("invalid integer literal %q", tok.text)
		}
		return Expression{Kind: ExprInteger, Int: n}, nil
	case tok.kind == tokFloat:
		f, err := parseFloat(tok.text)
		if err != nil {
			return Expression{}, dberrors.Parsef("invalid float literal %q", tok.text)
		}
		return Expression{Kind: ExprFloat, Float: f}, nil
	case tok.kind == tokString:
		return Expression{Kind: ExprString, Str: tok.text}, nil
	default:
		return Expression{}, newSyntaxError(tok.pos, "expected a constant expression, got %q", tok.text)
	}
}
