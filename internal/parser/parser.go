package parser

import (
	"context"
	"fmt"

	"oxide/internal/ast"
	"oxide/internal/diag"
	"oxide/internal/lexer"
	"oxide/internal/source"
	"oxide/internal/token"
	"oxide/internal/trace"

	"fortio.org/safecast"
)

const (
	DefaultMaxDepth  = 256
	DefaultMaxTokens = 1 << 20
	DefaultMaxErrors = 1000
)

type Options struct {
	// MaxDepth ограничивает вложенность items/выражений/паттернов/типов.
	MaxDepth int
	// MaxTokens ограничивает число токенов, взятых у лексера.
	MaxTokens     int
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
	Tracer        trace.Tracer
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

// Result is always complete: Tree is never nil, even for empty or broken input.
type Result struct {
	Tree *ast.Tree
	Bag  *diag.Bag
	// Halted is set when a resource budget stopped the parse early.
	Halted bool
}

// Parser - состояние парсера на один файл
type Parser struct {
	ts     *lexer.Stream
	b      *ast.Builder
	file   *source.File
	opts   Options
	rep    diag.Reporter
	tracer trace.Tracer
	ctx    context.Context
	spanID uint64

	depth int
	// одна ошибка на позицию: повторные отчёты в ту же точку глушатся
	lastErrPos uint32
	hasLastErr bool
	// незакрытый разделитель у EOF репортится один раз
	unclosedReported bool
	// atEOF: первая ошибка на конце ввода ждёт, не окажется ли группа незакрытой
	atEOF heldReport
	// tail > 0: ввод кончился внутри незакрытой группы, спаны тянутся до EOF
	tail  uint32
	fatal bool

	speculating int
	specFailed  bool
}

// ParseFile - входная точка для разбора одного файла.
// Требует уже созданный lexer (на основе source.File). Lexer diagnostics go
// wherever the lexer was told to send them; pass the same reporter in opts to
// collect both in one Bag.
func ParseFile(ctx context.Context, fs *source.FileSet, lx *lexer.Lexer, opts Options) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	bag := bagOf(opts.Reporter)
	if opts.Reporter == nil {
		bag = diag.NewBag(maxErrors(opts.MaxErrors))
		opts.Reporter = diag.BagReporter{Bag: bag}
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.FromContext(ctx)
	}

	file := lx.File()
	dedup := diag.NewDedupReporter(opts.Reporter)
	p := &Parser{
		file:   file,
		opts:   opts,
		rep:    dedup,
		tracer: tracer,
		ctx:    ctx,
	}
	p.ts = lexer.NewStream(lx, lexer.StreamOptions{
		MaxTokens:  opts.MaxTokens,
		OnExceeded: p.tokenBudgetExceeded,
	})
	p.b = ast.NewBuilder(ast.Hints{Nodes: nodeHint(file)}, nil)

	name := file.Path
	if fs != nil {
		name = file.FormatPath("auto", fs.BaseDir())
	}
	span := trace.Begin(tracer, trace.ScopeModule, "parse:"+name, trace.CurrentSpan(ctx).SpanID)
	p.spanID = span.ID()

	root := p.parseModule()
	if !p.fatal {
		p.atEOF.flush(p.rep)
	}
	tree := p.b.Finish(root, file)

	if n := dedup.Suppressed(); n > 0 {
		span.WithExtra("deduped", fmt.Sprint(n))
	}
	span.WithExtra("nodes", fmt.Sprint(tree.Len())).End(fmt.Sprintf("tokens=%d", p.ts.Consumed()))
	return Result{
		Tree:   tree,
		Bag:    bag,
		Halted: p.ts.Halted(),
	}
}

// Parse lexes and parses file with a fresh Bag shared by the lexer and the
// parser. opts.Reporter, when set, receives every diagnostic as well.
func Parse(ctx context.Context, file *source.File, opts Options) Result {
	bag := diag.NewBag(maxErrors(opts.MaxErrors))
	var rep diag.Reporter = diag.BagReporter{Bag: bag}
	if opts.Reporter != nil {
		rep = teeReporter{rep, opts.Reporter}
	}
	lx := lexer.New(file, lexer.Options{Reporter: rep})
	opts.Reporter = rep
	res := ParseFile(ctx, nil, lx, opts)
	res.Bag = bag
	return res
}

func bagOf(r diag.Reporter) *diag.Bag {
	switch rep := r.(type) {
	case diag.BagReporter:
		return rep.Bag
	case *diag.BagReporter:
		return rep.Bag
	case teeReporter:
		return bagOf(rep[0])
	default:
		return nil
	}
}

type teeReporter [2]diag.Reporter

func (t teeReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note, fixes []diag.Fix) {
	for _, r := range t {
		r.Report(code, sev, primary, msg, notes, fixes)
	}
}

func maxErrors(n uint) int {
	if n == 0 {
		return DefaultMaxErrors
	}
	v, err := safecast.Conv[int](n)
	if err != nil {
		return DefaultMaxErrors
	}
	return v
}

// nodeHint: примерно один узел на 4 байта исходника
func nodeHint(f *source.File) uint {
	return uint(f.Len()/4) + 16
}

// parseModule - основной цикл верхнего уровня: пока не EOF - parseItem.
// Корневой Module покрывает весь файл.
func (p *Parser) parseModule() ast.NodeID {
	kids, docs := p.parseInnerAttrs()
	kids = append(kids, p.parseItems(token.EOF, ctxModule)...)
	root := p.b.New(ast.Module, p.file.Span(), kids...)
	p.b.SetDocs(root, docs)
	return root
}

func (p *Parser) at(k token.Kind) bool {
	return p.ts.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return p.ts.Peek().Is(kinds...)
}

