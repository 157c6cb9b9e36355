/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: analyzers.go
Description: Built-in analyzer set. Default returns the analyzers every engine starts
with, in registration order.
*/

package analyzers

import "github.com/kleascm/hexaminer/pkg/core"

// Default returns the built-in analyzers: signature catalog, PE, ELF
func Default() []core.Analyzer {
	return []core.Analyzer{
		NewSignatureAnalyzer(),
		NewPEAnalyzer(),
		NewELFAnalyzer(),
	}
}
