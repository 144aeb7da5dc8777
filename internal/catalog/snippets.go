/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package catalog

import "math/rand"

// Snippet is a sample used to seed an empty editor.
type Snippet struct {
	Language string
	Title    string
	Code     string
}

var snippets = []Snippet{
	{Language: "javascript", Title: "debounce.js", Code: `function debounce(fn, wait) {
  let timer;
  return (...args) => {
    clearTimeout(timer);
    timer = setTimeout(() => fn(...args), wait);
  };
}`},
	{Language: "python", Title: "fib.py", Code: `def fib(n):
    a, b = 0, 1
    for _ in range(n):
        yield a
        a, b = b, a + b

print(list(fib(10)))`},
	{Language: "go", Title: "main.go", Code: `package main

import "fmt"

func main() {
	ch := make(chan int)
	go func() { ch <- 42 }()
	fmt.Println(<-ch)
}`},
	{Language: "rust", Title: "main.rs", Code: `fn main() {
    let words = vec!["prism", "code", "shot"];
    for (i, w) in words.iter().enumerate() {
        println!("{i}: {w}");
    }
}`},
	{Language: "typescript", Title: "user.ts", Code: `interface User {
  id: number;
  name: string;
}

const greet = (u: User): string => ` + "`Hello, ${u.name}`" + `;`},
	{Language: "sql", Title: "query.sql", Code: `SELECT u.name, COUNT(o.id) AS orders
FROM users u
LEFT JOIN orders o ON o.user_id = u.id
GROUP BY u.name
ORDER BY orders DESC;`},
	{Language: "css", Title: "card.css", Code: `.card {
  display: grid;
  place-items: center;
  border-radius: 12px;
  background: linear-gradient(135deg, #d946ef, #fb923c);
}`},
}

// Snippets returns a copy of the sample snippets.
func Snippets() []Snippet {
	out := make([]Snippet, len(snippets))
	copy(out, snippets)
	return out
}

// RandomSnippet picks a sample. A nil rng uses the global source.
func RandomSnippet(rng *rand.Rand) Snippet {
	if rng == nil {
		return snippets[rand.Intn(len(snippets))]
	}
	return snippets[rng.Intn(len(snippets))]
}
