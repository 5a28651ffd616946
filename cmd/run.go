/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/AlexanderBlank/BART/InputParameters"
	"github.com/AlexanderBlank/BART/aqdata"
	"github.com/AlexanderBlank/BART/equation"
	"github.com/AlexanderBlank/BART/fe"
	"github.com/AlexanderBlank/BART/iteration"
	"github.com/AlexanderBlank/BART/material"
	"github.com/AlexanderBlank/BART/mesh"
	"github.com/AlexanderBlank/BART/utils"
)

// RunCmd represents the run command
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Solve a transport problem from a YAML definition file",
	Long: `
Solve a multigroup transport problem defined in a YAML file: geometry,
discretization, angular quadrature, material library and iteration controls.

bart run -f problem.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		fileName, err := cmd.Flags().GetString("file")
		if err != nil {
			panic(err)
		}
		if prof, _ := cmd.Flags().GetBool("profile"); prof {
			defer profile.Start().Stop()
		}
		ip := processInput(fileName)
		RunProblem(ip)
	},
}

func init() {
	rootCmd.AddCommand(RunCmd)
	RunCmd.Flags().StringP("file", "f", "", "YAML problem definition file")
	RunCmd.Flags().BoolP("profile", "p", false, "generate a CPU profile of the solve")
}

func processInput(fileName string) (ip *InputParameters.ProblemParameters) {
	if len(fileName) == 0 {
		fmt.Printf("error: must supply a problem definition file (-f, --file)\n")
		exampleFile := `
########################################
Title: "Two Group Slab"
EquationName: ep
Discretization: dfem
IsEigenProblem: true
SpatialDimension: 1
AxisLengths: [10.]
NCells: [20]
SNOrder: 8
ReflectiveBoundaries: [xmin, xmax]
MaterialLibrary:
  NGroup: 2
  Materials:
    - Name: fuel
      Fissile: true
      SigmaT: [0.2, 1.0]
      SigmaS: [[0.1, 0.08], [0., 0.3]]
      NuSigF: [0.005, 0.6]
      Chi: [1., 0.]
########################################
`
		fmt.Printf("Example problem file:%s", exampleFile)
		os.Exit(1)
	}
	data, err := ioutil.ReadFile(fileName)
	if err != nil {
		fmt.Printf("error reading problem file: %s\n", err.Error())
		os.Exit(1)
	}
	ip = &InputParameters.ProblemParameters{}
	if err = ip.Parse(data); err != nil {
		fmt.Printf("error parsing problem file: %s\n", err.Error())
		os.Exit(1)
	}
	if err = ip.Validate(); err != nil {
		fmt.Printf("error in problem definition: %s\n", err.Error())
		os.Exit(1)
	}
	ip.Print()
	return
}

// RunProblem builds the mesh, quadrature, materials and equation from the
// problem definition, then drives the configured iteration scheme.
func RunProblem(ip *InputParameters.ProblemParameters) {
	msh := mesh.NewGenerator(ip.GridSpec(), ip.NPartitions)
	aq := aqdata.NewAngularQuadrature(ip.SpatialDimension, ip.SNOrder,
		ip.Materials.NGroup, msh.ReflectiveBCMap())
	mats, err := material.NewProperties(ip.Materials, aq.AngularNorm)
	if err != nil {
		fmt.Printf("error in material library: %s\n", err.Error())
		os.Exit(1)
	}
	equ := equation.NewEquation(equation.Config{
		EquationName:       ip.EquationName,
		Discretization:     fe.Discretization(ip.Discretization),
		IsEigenProblem:     ip.IsEigenProblem,
		DoNDA:              ip.DoNDA,
		POrder:             ip.PolynomialOrder,
		LinearSolveTol:     ip.LinearSolveTol,
		LinearSolveMaxIter: ip.LinearSolveMaxIter,
		Verbose:            true,
	}, msh, aq, mats)

	sflxes := make([]utils.Vector, equ.NGroup)
	equ.InitializeSystem(sflxes)
	equ.AssembleBilinearForm()

	var (
		ig     = iteration.NewIGBase(ip.IGTol, ip.IGMaxIter, false)
		mg     = iteration.NewMGBase(ip.MGTol, ip.MGMaxIter, true)
		status iteration.Status
	)
	if ip.IsEigenProblem {
		pi := iteration.NewPowerIteration(ip.ErrPhiTol, ip.ErrKTol, ip.EigenMaxIter, true)
		var keff float64
		if keff, status, err = pi.EigenIterations(equ, sflxes, ig, mg); err != nil {
			fmt.Printf("solver error: %s\n", err.Error())
			os.Exit(1)
		}
		fmt.Printf("\n[%s]\t\t= Status\nkeff = %.8f\n", status, keff)
	} else {
		si := iteration.NewSourceIteration(true)
		if status, err = si.SourceIterations(equ, sflxes, ig, mg); err != nil {
			fmt.Printf("solver error: %s\n", err.Error())
			os.Exit(1)
		}
		fmt.Printf("\n[%s]\t\t= Status\n", status)
	}
	for g := 0; g < equ.NGroup; g++ {
		fmt.Printf("group %d scalar flux: min %.6e, max %.6e\n",
			g, sflxes[g].Min(), sflxes[g].Max())
	}
}
