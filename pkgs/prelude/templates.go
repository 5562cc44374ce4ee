package prelude

// Helper definitions in D. Each template receives helperData.

const printTemplate = `{{define "print"}}import std.stdio : write, writeln;

void print(T...)(T args) {
{{.Indent}}foreach (i, arg; args) {
{{.Indent}}{{.Indent}}if (i > 0) {
{{.Indent}}{{.Indent}}{{.Indent}}write(" ");
{{.Indent}}{{.Indent}}}
{{.Indent}}{{.Indent}}write(arg);
{{.Indent}}}
{{.Indent}}writeln();
}
{{end}}`

const containsTemplate = `{{define "contains"}}import std.algorithm.searching : canFind;

bool contains(H, N)(H haystack, N needle) {
{{.Indent}}static if (__traits(isAssociativeArray, H)) {
{{.Indent}}{{.Indent}}return (needle in haystack) !is null;
{{.Indent}}} else {
{{.Indent}}{{.Indent}}return haystack.canFind(needle);
{{.Indent}}}
}
{{end}}`

const rangeTemplate = `{{define "range"}}import std.range : iota;

auto range(A, B)(A start, B stop) {
{{.Indent}}return iota(start, stop);
}
{{end}}`
