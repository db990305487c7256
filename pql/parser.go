package pql

// Parser builds a generic parse tree from a token stream. The
// compiler walks the tree; the parser itself performs no semantic
// checks beyond the grammar.
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser creates a parser over the given tokens.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse tokenizes and parses a query, returning the root query node.
func Parse(input string) (*Node, error) {
	tokens := Tokenize(input)
	if last := tokens[len(tokens)-1]; last.Type == TokenError {
		return nil, parseErrorf("unexpected character %q", last.Value)
	}
	return NewParser(tokens).ParseQuery()
}

// current returns the token at the parse position
func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

// peek returns the token after the parse position
func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos+1]
}

// advance moves past the current token
func (p *Parser) advance() {
	p.pos++
}

// expect consumes a token of the given type or fails
func (p *Parser) expect(t TokenType, what string) (Token, error) {
	tok := p.current()
	if tok.Type != t {
		return tok, parseErrorf("expected %s, got %q", what, tok.Value)
	}
	p.advance()
	return tok, nil
}

// ParseQuery parses a full query and verifies nothing trails it.
func (p *Parser) ParseQuery() (*Node, error) {
	root := &Node{Kind: KindQuery}

	selectNode, err := p.parseSelectClause()
	if err != nil {
		return nil, err
	}
	root.Children = append(root.Children, selectNode)

	if p.current().Type == TokenFrom {
		fromNode, err := p.parseFromClause()
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, fromNode)
	}

	if p.current().Type == TokenWhere {
		p.advance()
		cond, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, &Node{Kind: KindWhere, Children: []*Node{cond}})
	}

	if p.current().Type == TokenGroup {
		groupNode, err := p.parseGroupByClause()
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, groupNode)
	}

	if p.current().Type == TokenOrder {
		orderNode, err := p.parseOrderByClause()
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, orderNode)
	}

	if p.current().Type == TokenLimit {
		p.advance()
		num, err := p.expect(TokenNumber, "row count after LIMIT")
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, &Node{
			Kind:     KindLimit,
			Children: []*Node{{Kind: KindNumber, Text: num.Value}},
		})
	}

	if p.current().Type == TokenSemicolon {
		p.advance()
	}
	if tok := p.current(); tok.Type != TokenEOF {
		return nil, parseErrorf("unexpected trailing input at %q", tok.Value)
	}

	return root, nil
}

// parseSelectClause parses SELECT item (',' item)*
func (p *Parser) parseSelectClause() (*Node, error) {
	if _, err := p.expect(TokenSelect, "SELECT"); err != nil {
		return nil, err
	}

	node := &Node{Kind: KindSelect}
	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, item)

		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}
	return node, nil
}

// parseSelectItem parses one selectable expression with an optional
// AS alias. The alias is attached as a trailing child of the
// expression node.
func (p *Parser) parseSelectItem() (*Node, error) {
	expr, err := p.parseSelectExpression()
	if err != nil {
		return nil, err
	}

	if p.current().Type == TokenAs {
		p.advance()
		alias, err := p.expect(TokenIdent, "alias after AS")
		if err != nil {
			return nil, err
		}
		expr.Children = append(expr.Children, &Node{Kind: KindAs, Text: alias.Value})
	}
	return expr, nil
}

// parseSelectExpression parses the expressions allowed in SELECT and
// ORDER BY: the whole event, operands, and aggregate functions.
func (p *Parser) parseSelectExpression() (*Node, error) {
	switch tok := p.current(); tok.Type {
	case TokenSum, TokenAvg, TokenCount:
		return p.parseAggregate()
	case TokenEvent:
		if next := p.peek().Type; next != TokenDot && next != TokenLeftBracket {
			p.advance()
			return &Node{Kind: KindEvent, Text: "Event"}, nil
		}
		return p.parseOperand()
	default:
		return p.parseOperand()
	}
}

// parseAggregate parses SUM(...), AVG(...), or COUNT(...).
func (p *Parser) parseAggregate() (*Node, error) {
	var kind NodeKind
	switch p.current().Type {
	case TokenSum:
		kind = KindSum
	case TokenAvg:
		kind = KindAvg
	case TokenCount:
		kind = KindCount
	}
	fn := p.current().Value
	p.advance()

	if _, err := p.expect(TokenLeftParen, "'('"); err != nil {
		return nil, err
	}

	var arg *Node
	var err error
	if p.current().Type == TokenEvent &&
		p.peek().Type != TokenDot && p.peek().Type != TokenLeftBracket {
		arg = &Node{Kind: KindEvent, Text: "Event"}
		p.advance()
	} else {
		arg, err = p.parseOperand()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(TokenRightParen, "')'"); err != nil {
		return nil, err
	}
	return &Node{Kind: kind, Text: fn, Children: []*Node{arg}}, nil
}

// parseOperand parses a field reference, attribute reference, time
// function, or literal.
func (p *Parser) parseOperand() (*Node, error) {
	switch tok := p.current(); tok.Type {
	case TokenEvent:
		return p.parseEventReference()
	case TokenYear, TokenMonth, TokenDay, TokenHour, TokenMinute, TokenSecond:
		return p.parseTimeFunction()
	case TokenString:
		p.advance()
		return &Node{Kind: KindStringLiteral, Text: tok.Value}, nil
	case TokenNumber:
		p.advance()
		return &Node{Kind: KindNumber, Text: tok.Value}, nil
	default:
		return nil, parseErrorf("expected an operand, got %q", tok.Value)
	}
}

// parseEventReference parses Event.Property or Event['attribute'].
func (p *Parser) parseEventReference() (*Node, error) {
	p.advance() // Event

	switch p.current().Type {
	case TokenDot:
		p.advance()
		prop, err := p.expect(TokenIdent, "property name after '.'")
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindEventProperty, Text: prop.Value}, nil
	case TokenLeftBracket:
		p.advance()
		name, err := p.expect(TokenString, "quoted attribute name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightBracket, "']'"); err != nil {
			return nil, err
		}
		return &Node{Kind: KindAttribute, Text: name.Value}, nil
	default:
		return nil, parseErrorf("expected '.' or '[' after Event, got %q", p.current().Value)
	}
}

// parseTimeFunction parses YEAR(...), MONTH(...), etc.
func (p *Parser) parseTimeFunction() (*Node, error) {
	var kind NodeKind
	switch p.current().Type {
	case TokenYear:
		kind = KindYear
	case TokenMonth:
		kind = KindMonth
	case TokenDay:
		kind = KindDay
	case TokenHour:
		kind = KindHour
	case TokenMinute:
		kind = KindMinute
	case TokenSecond:
		kind = KindSecond
	}
	fn := p.current().Value
	p.advance()

	if _, err := p.expect(TokenLeftParen, "'('"); err != nil {
		return nil, err
	}
	inner, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRightParen, "')'"); err != nil {
		return nil, err
	}
	return &Node{Kind: kind, Text: fn, Children: []*Node{inner}}, nil
}

// parseFromClause parses FROM '*' or FROM type (',' type)*
func (p *Parser) parseFromClause() (*Node, error) {
	p.advance() // FROM

	node := &Node{Kind: KindFrom}
	if p.current().Type == TokenStar {
		p.advance()
		node.Children = append(node.Children, &Node{Kind: KindIdentifier, Text: "*"})
		return node, nil
	}

	for {
		name, err := p.expect(TokenIdent, "event type name")
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, &Node{Kind: KindIdentifier, Text: name.Value})

		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}
	return node, nil
}

// parseOr parses OR-combined conditions. AND binds tighter than OR.
func (p *Parser) parseOr() (*Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Node{Kind: KindOr, Children: []*Node{left, right}}
	}
	return left, nil
}

// parseAnd parses AND-combined conditions
func (p *Parser) parseAnd() (*Node, error) {
	left, err := p.parseUnaryCondition()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenAnd {
		p.advance()
		right, err := p.parseUnaryCondition()
		if err != nil {
			return nil, err
		}
		left = &Node{Kind: KindAnd, Children: []*Node{left, right}}
	}
	return left, nil
}

// parseUnaryCondition parses NOT(...), a parenthesized condition, or
// a single comparison.
func (p *Parser) parseUnaryCondition() (*Node, error) {
	switch p.current().Type {
	case TokenNot:
		p.advance()
		if _, err := p.expect(TokenLeftParen, "'(' after NOT"); err != nil {
			return nil, err
		}
		cond, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightParen, "')'"); err != nil {
			return nil, err
		}
		return &Node{Kind: KindNot, Children: []*Node{cond}}, nil
	case TokenLeftParen:
		p.advance()
		cond, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightParen, "')'"); err != nil {
			return nil, err
		}
		return cond, nil
	default:
		return p.parseComparison()
	}
}

// parseComparison parses operand op operand
func (p *Parser) parseComparison() (*Node, error) {
	lhs, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	var kind NodeKind
	switch tok := p.current(); tok.Type {
	case TokenEqual:
		kind = KindEquals
	case TokenNotEqual:
		kind = KindNotEquals
	case TokenGreater:
		kind = KindGreaterThan
	case TokenLess:
		kind = KindLessThan
	case TokenMatches:
		kind = KindMatches
	case TokenStarts:
		p.advance()
		if _, err := p.expect(TokenWith, "WITH after STARTS"); err != nil {
			return nil, err
		}
		rhs, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindStartsWith, Children: []*Node{lhs, rhs}}, nil
	default:
		return nil, parseErrorf("expected a comparison operator, got %q", tok.Value)
	}
	p.advance()

	rhs, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return &Node{Kind: kind, Children: []*Node{lhs, rhs}}, nil
}

// parseGroupByClause parses GROUP BY item (',' item)*
func (p *Parser) parseGroupByClause() (*Node, error) {
	p.advance() // GROUP
	if _, err := p.expect(TokenBy, "BY after GROUP"); err != nil {
		return nil, err
	}

	node := &Node{Kind: KindGroupBy}
	for {
		item, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, item)

		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}
	return node, nil
}

// parseOrderByClause parses ORDER BY item [ASC|DESC] (',' ...)*
func (p *Parser) parseOrderByClause() (*Node, error) {
	p.advance() // ORDER
	if _, err := p.expect(TokenBy, "BY after ORDER"); err != nil {
		return nil, err
	}

	node := &Node{Kind: KindOrderBy}
	for {
		expr, err := p.parseSelectExpression()
		if err != nil {
			return nil, err
		}
		item := &Node{Kind: KindOrderItem, Children: []*Node{expr}}

		switch p.current().Type {
		case TokenAsc:
			item.Children = append(item.Children, &Node{Kind: KindAsc})
			p.advance()
		case TokenDesc:
			item.Children = append(item.Children, &Node{Kind: KindDesc})
			p.advance()
		}
		node.Children = append(node.Children, item)

		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}
	return node, nil
}
