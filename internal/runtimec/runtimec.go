// Package runtimec holds the C source text of the runtime helper
// functions codegen's header section embeds verbatim: the
// five fixed signatures codegen relies on as a contract, and minimal
// bodies for them. Their internal implementation is explicitly out of
// scope — codegen only needs *a* working body so the
// emitted translation unit links, not a good one.
package runtimec

// Header is the include prologue of the generated translation unit.
const Header = `#include <stdio.h>
#include <stdlib.h>
#include <string.h>
#include <stdint.h>
#include <stdbool.h>
`

// HelperDecls are the five signatures codegen relies on as a fixed
// contract.
const HelperDecls = `
char*   tl_concat(const char*, const char*);
int64_t tl_strlen(const char*);
char*   tl_substr(const char*, int64_t start, int64_t len);
int64_t tl_strcmp(const char*, const char*);
char*   tl_char_at(const char*, int64_t index);
`

// HelperBodies implements the five runtime helpers. By design
// Non-goals ("strings leak by design"), tl_concat and tl_substr
// intentionally never free their allocations.
const HelperBodies = `
char* tl_concat(const char* a, const char* b) {
    size_t la = strlen(a), lb = strlen(b);
    char* out = malloc(la + lb + 1);
    memcpy(out, a, la);
    memcpy(out + la, b, lb + 1);
    return out;
}

int64_t tl_strlen(const char* s) {
    return (int64_t)strlen(s);
}

char* tl_substr(const char* s, int64_t start, int64_t len) {
    int64_t total = (int64_t)strlen(s);
    if (start < 0) start = 0;
    if (start > total) start = total;
    if (len < 0 || start + len > total) len = total - start;
    char* out = malloc((size_t)len + 1);
    memcpy(out, s + start, (size_t)len);
    out[len] = '\0';
    return out;
}

int64_t tl_strcmp(const char* a, const char* b) {
    return (int64_t)strcmp(a, b);
}

char* tl_char_at(const char* s, int64_t index) {
    int64_t total = (int64_t)strlen(s);
    if (index < 0 || index >= total) {
        fprintf(stderr, "array index out of bounds\n");
        exit(1);
    }
    char* out = malloc(2);
    out[0] = s[index];
    out[1] = '\0';
    return out;
}
`
