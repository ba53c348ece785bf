package language

// builtinSuites returns the language suites shipped with the judge core.
// Command templates intentionally stay close to what a contest judge
// would actually invoke: no extra optimization flags beyond -O2, no
// language-specific sandboxing quirks baked in here (those live in the
// isolation profiles the sandbox engine resolves separately).
func builtinSuites() []Suite {
	return []Suite{
		{Spec: Spec{
			ID:                 "c",
			Extensions:         []string{"c"},
			SourceFileName:     "main.c",
			BinaryFileName:     "main",
			CompileEnabled:     true,
			CompileCmdTemplate: "gcc -O2 -std=c17 -static -o {bin} {src}",
			RunCmdTemplate:     "{bin}",
			CompileProfile:     "compile",
			RunProfile:         "native",
			TimeMultiplier:     1.0,
			MemoryMultiplier:   1.0,
		}},
		{Spec: Spec{
			ID:                 "cpp11",
			Extensions:         []string{"cpp11"},
			SourceFileName:     "main.cpp",
			BinaryFileName:     "main",
			CompileEnabled:     true,
			CompileCmdTemplate: "g++ -O2 -std=c++11 -static -o {bin} {src}",
			RunCmdTemplate:     "{bin}",
			CompileProfile:     "compile",
			RunProfile:         "native",
			TimeMultiplier:     1.0,
			MemoryMultiplier:   1.0,
		}},
		{Spec: Spec{
			ID:                 "cpp14",
			Extensions:         []string{"cpp14"},
			SourceFileName:     "main.cpp",
			BinaryFileName:     "main",
			CompileEnabled:     true,
			CompileCmdTemplate: "g++ -O2 -std=c++14 -static -o {bin} {src}",
			RunCmdTemplate:     "{bin}",
			CompileProfile:     "compile",
			RunProfile:         "native",
			TimeMultiplier:     1.0,
			MemoryMultiplier:   1.0,
		}},
		{Spec: Spec{
			ID:                 "cpp",
			Extensions:         []string{"cpp", "cc", "cxx"},
			SourceFileName:     "main.cpp",
			BinaryFileName:     "main",
			CompileEnabled:     true,
			CompileCmdTemplate: "g++ -O2 -std=c++17 -static -o {bin} {src}",
			RunCmdTemplate:     "{bin}",
			CompileProfile:     "compile",
			RunProfile:         "native",
			TimeMultiplier:     1.0,
			MemoryMultiplier:   1.0,
		}},
		{Spec: Spec{
			ID:                 "cpp20",
			Extensions:         []string{"cpp20"},
			SourceFileName:     "main.cpp",
			BinaryFileName:     "main",
			CompileEnabled:     true,
			CompileCmdTemplate: "g++ -O2 -std=c++20 -static -o {bin} {src}",
			RunCmdTemplate:     "{bin}",
			CompileProfile:     "compile",
			RunProfile:         "native",
			TimeMultiplier:     1.0,
			MemoryMultiplier:   1.0,
		}},
		{Spec: Spec{
			ID:                 "pascal",
			Extensions:         []string{"pas"},
			SourceFileName:     "main.pas",
			BinaryFileName:     "main",
			CompileEnabled:     true,
			CompileCmdTemplate: "fpc -O2 -Mobjfpc -o{bin} {src}",
			RunCmdTemplate:     "{bin}",
			CompileProfile:     "compile",
			RunProfile:         "native",
			TimeMultiplier:     1.0,
			MemoryMultiplier:   1.0,
		}},
		{Spec: Spec{
			ID:                 "python3",
			Extensions:         []string{"py"},
			SourceFileName:     "main.py",
			CompileEnabled:     false,
			RunCmdTemplate:     "python3 {src}",
			CompileProfile:     "compile",
			RunProfile:         "interpreted",
			TimeMultiplier:     3.0,
			MemoryMultiplier:   2.0,
		}},
		{Spec: Spec{
			ID:                 "rust",
			Extensions:         []string{"rs"},
			SourceFileName:     "main.rs",
			BinaryFileName:     "main",
			CompileEnabled:     true,
			CompileCmdTemplate: "rustc -O -o {bin} {src}",
			RunCmdTemplate:     "{bin}",
			CompileProfile:     "compile",
			RunProfile:         "native",
			TimeMultiplier:     1.0,
			MemoryMultiplier:   1.0,
		}},
	}
}
