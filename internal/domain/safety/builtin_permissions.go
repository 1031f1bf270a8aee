package safety

// BuiltinCommandPermissions returns the default allowlist: read-only inspection
// of project files, searching, text processing, read-only git, and the usual
// build and test entry points of Go and npm projects. Each call returns a new
// map that the caller may modify.
func BuiltinCommandPermissions() CommandPermissions {
	return MergePermissions(
		fileReadPermissions(),
		searchPermissions(),
		textProcessingPermissions(),
		gitReadPermissions(),
		devToolPermissions(),
		systemInfoPermissions(),
	)
}

// flags matches short and long options without a value, e.g. -la or --stat.
const flags = `-[A-Za-z0-9]+|--[a-z][a-z0-9-]*`

// grepFlags leaves out options that read patterns from files and recursion:
// grep -r descends into hidden and gitignored paths, which no file argument
// check can see.
const grepFlags = `-[nilvcwHhoEFsqx]+|--color(=[a-z]+)?`

// rgFlags are grepFlags. rg skips hidden and gitignored paths by default, so
// unlike grep it may search directories; -r is its --replace and stays out.
const rgFlags = grepFlags

// jqFilter matches filters built from paths, literals, operators and a fixed
// set of pure builtins. Variables ($ENV, $__loc__), string interpolation,
// formats and every other builtin (env, input_filename, include, import, ...)
// are left out.
const jqFilter = `(?:` +
	`\.[A-Za-z_][A-Za-z0-9_]*` +
	`|\.` +
	`|\[(?:-?[0-9]*(?::-?[0-9]*)?|"[^"\\$]*")\]` +
	`|"[^"\\]*"` +
	`|[0-9]+(?:\.[0-9]+)?` +
	`|[ |,()=!<>+*/%?{}:;-]` +
	`|\b(?:` + jqBuiltins + `)\b` +
	`)+`

const jqBuiltins = `keys|length|map|select|sort|sort_by|group_by|unique|unique_by|min|max|min_by|max_by|` +
	`reverse|type|to_entries|from_entries|with_entries|has|values|add|any|all|flatten|first|last|` +
	`tostring|tonumber|tojson|test|contains|startswith|endswith|join|split|ascii_downcase|ascii_upcase|` +
	`ltrimstr|rtrimstr|not|empty|paths|del|range|limit|index|floor|and|or|if|then|elif|else|end|` +
	`null|true|false`

// searchPattern matches a search expression given as a positional argument.
// Anything starting with "-" would be parsed as an option instead.
const searchPattern = `(?s)([^-].*)?`

// revision matches commit-ish arguments. It never starts with "-".
const revision = `[A-Za-z0-9_.~^@][A-Za-z0-9_./~^@-]*`

// goPackage matches relative package patterns without ".." components.
const goPackage = `\.(/[A-Za-z0-9_-]+)*(/\.\.\.)?`

// someOf matches any subset of specs, each at most once, in any order.
func someOf(specs ...ArgSpec) ArgSpec {
	optional := make([]ArgSpec, len(specs))
	for i, s := range specs {
		optional[i] = Optional(s)
	}
	return OptionalAnyOrder(optional...)
}

// sortFlags leaves out options that take a program or an output file.
const sortFlags = `-[bdfginMrRsuVz]+|-k[0-9,.a-zA-Z]+|-t.|--reverse|--numeric-sort|--unique`

// flagsThenFiles accepts up to three options matching flagExpr followed by files.
func flagsThenFiles(flagExpr string) [][]ArgSpec {
	return Args(
		P(RestFilesArg()),
		P(Regex(flagExpr), RestFilesArg()),
		P(Regex(flagExpr), Regex(flagExpr), RestFilesArg()),
		P(Regex(flagExpr), Regex(flagExpr), Regex(flagExpr), RestFilesArg()),
	)
}

func fileReadPermissions() CommandPermissions {
	return CommandPermissions{
		"ls":       {Args: flagsThenFiles(flags)},
		"cat":      {Args: flagsThenFiles(flags)},
		"wc":       {Args: flagsThenFiles(flags)},
		"file":     {Args: flagsThenFiles(flags)},
		"stat":     {Args: flagsThenFiles(flags)},
		"realpath": {Args: Args(P(RestFilesArg()))},
		"head": {Args: Args(
			P(RestFilesArg()),
			P(Regex(`-\d+`), RestFilesArg()),
			P(Seq(Lit("-n"), Regex(`\d+`)), RestFilesArg()),
		)},
		"tail": {Args: Args(
			P(RestFilesArg()),
			P(Regex(`-\d+`), RestFilesArg()),
			P(Seq(Lit("-n"), Regex(`\+?\d+`)), RestFilesArg()),
		)},
	}
}

// search accepts up to three options matching flagExpr, then a pattern given
// positionally or with -e, then files.
func search(flagExpr string) [][]ArgSpec {
	return Args(
		P(Regex(searchPattern), RestFilesArg()),
		P(Regex(flagExpr), Regex(searchPattern), RestFilesArg()),
		P(Regex(flagExpr), Regex(flagExpr), Regex(searchPattern), RestFilesArg()),
		P(Regex(flagExpr), Regex(flagExpr), Regex(flagExpr), Regex(searchPattern), RestFilesArg()),
		P(Optional(Regex(flagExpr)), Seq(Lit("-e"), AnyArg()), RestFilesArg()),
	)
}

func searchPermissions() CommandPermissions {
	return CommandPermissions{
		"grep": {Args: search(grepFlags)},
		"rg":   {Args: search(rgFlags)},
		"find": {Args: Args(
			P(FileArg()),
			P(FileArg(), someOf(
				Seq(Lit("-name"), AnyArg()),
				Seq(Lit("-type"), Regex(`[fdl]`)),
				Seq(Lit("-maxdepth"), Regex(`\d+`)),
			)),
		)},
		"which": {Args: Args(P(AnyArg()))},
	}
}

func textProcessingPermissions() CommandPermissions {
	return CommandPermissions{
		"sort": {Args: flagsThenFiles(sortFlags)},
		"uniq": {Args: flagsThenFiles(`-[cdiuz]+|-[fs][0-9]+`)},
		"cut": {Args: Args(
			P(AnyOrder(Seq(Lit("-d"), AnyArg()), Seq(Lit("-f"), Regex(`[0-9,-]+`))), RestFilesArg()),
			P(Seq(Lit("-c"), Regex(`[0-9,-]+`)), RestFilesArg()),
		)},
		"diff": {Args: Args(
			P(FileArg(), FileArg()),
			P(Regex(flags), FileArg(), FileArg()),
		)},
		"jq": {Args: Args(
			P(Regex(jqFilter), RestFilesArg()),
			P(Regex(`-[rcSje]+`), Regex(jqFilter), RestFilesArg()),
		)},
		"echo": {AllowAll: true},
	}
}

func gitReadPermissions() CommandPermissions {
	revisions := Args(
		P(),
		P(Regex(revision)),
		P(Regex(revision), Lit("--"), RestFilesArg()),
	)
	return CommandPermissions{
		"git": {SubCommands: map[string]CommandSpec{
			"status": {Args: Args(P(), P(Regex(flags)), P(Regex(flags), Regex(flags)))},
			"log": {Args: Args(
				P(),
				P(someOf(
					Lit("--oneline"),
					Lit("--stat"),
					Regex(`-\d+`),
					Seq(Lit("-n"), Regex(`\d+`)),
				)),
				P(someOf(Lit("--oneline"), Lit("--stat")), Lit("--"), RestFilesArg()),
			)},
			"diff": {Args: Args(
				P(),
				P(someOf(Lit("--cached"), Lit("--stat"), Lit("--name-only"))),
				P(someOf(Lit("--cached"), Lit("--stat"), Lit("--name-only")), Lit("--"), RestFilesArg()),
			)},
			"show":      {Args: revisions},
			"blame":     {Args: Args(P(FileArg()), P(Lit("--"), FileArg()))},
			"rev-parse": {Args: Args(P(Regex(revision)), P(Lit("--show-toplevel")), P(Lit("--abbrev-ref"), Regex(revision)))},
			"ls-files":  {Args: Args(P(), P(RestFilesArg()))},
			"branch":    {Args: Args(P(), P(Regex(`--list|-a|-r|-v|--show-current`)))},
			"stash": {SubCommands: map[string]CommandSpec{
				"list": {},
			}},
		}},
	}
}

func devToolPermissions() CommandPermissions {
	buildFlags := someOf(Lit("-v"), Lit("-race"), Lit("-short"), Lit("-cover"), Regex(`-count=\d+`), Regex(`-run=[A-Za-z0-9_/|^]+`))
	packages := Args(
		P(buildFlags),
		P(buildFlags, Regex(goPackage)),
		P(buildFlags, Regex(goPackage), Regex(goPackage)),
	)
	return CommandPermissions{
		"go": {SubCommands: map[string]CommandSpec{
			"version": {},
			"env":     {Args: Args(P(), P(Regex(`[A-Z0-9_]+`)))},
			"build":   {Args: packages},
			"test":    {Args: packages},
			"vet":     {Args: packages},
			"list":    {Args: Args(P(), P(Regex(goPackage)), P(Lit("-m"), Lit("all")))},
			"doc":     {Args: Args(P(AnyArg()), P(AnyArg(), AnyArg()))},
			"mod": {SubCommands: map[string]CommandSpec{
				"tidy":  {},
				"graph": {},
				"why":   {Args: Args(P(AnyArg()))},
			}},
		}},
		"gofmt": {Args: Args(
			P(RestFilesArg()),
			P(Regex(`-[ldes]+`), RestFilesArg()),
		)},
		"npm": {SubCommands: map[string]CommandSpec{
			"test": {Args: Args(P(), P(Lit("--"), RestAnyArg()))},
			"run": {Args: Args(
				P(Regex(`[a-z][a-z0-9:_-]*`)),
				P(Regex(`[a-z][a-z0-9:_-]*`), Lit("--"), RestAnyArg()),
			)},
			"ls": {Args: Args(P(), P(Regex(flags)))},
		}},
		"mkdir": {Args: Args(P(Optional(Lit("-p")), FileArg(), RestFilesArg()))},
		"touch": {Args: Args(P(FileArg(), RestFilesArg()))},
	}
}

func systemInfoPermissions() CommandPermissions {
	return CommandPermissions{
		"pwd":    {},
		"whoami": {},
		"date":   {Args: Args(P(), P(Regex(`\+[^;]*`)))},
		"uname":  {Args: Args(P(), P(Regex(`-[asnrvmpio]+`)))},
	}
}
